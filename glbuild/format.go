package glbuild

import "github.com/soypat/glnode"

// format converts snippet of type from to type to using constructors,
// swizzles and padding. Vectors grown to four components are padded with a
// 1.0 w component, otherwise missing components are zero. Booleans are
// reduced from vectors with all(). Unknown or opaque types are returned as is.
func format(typeName func(glnode.Type) string, snippet string, from, to glnode.Type) string {
	if from == to || to == glnode.TypeNone || to == glnode.TypeVoid || from == glnode.TypeNone {
		return snippet
	}
	fromLength := from.Length()
	toLength := to.Length()
	if fromLength == 0 || toLength == 0 {
		return snippet
	}
	switch {
	case from == glnode.TypeMat4 && to == glnode.TypeMat3:
		return typeName(to) + "( " + snippet + "[ 0 ].xyz, " + snippet + "[ 1 ].xyz, " + snippet + "[ 2 ].xyz )"
	case from == glnode.TypeMat3 && to == glnode.TypeMat2:
		return typeName(to) + "( " + snippet + "[ 0 ].xy, " + snippet + "[ 1 ].xy )"
	case from.IsMatrix():
		return snippet
	case to.IsMatrix():
		if fromLength == 1 {
			return typeName(to) + "( " + format(typeName, snippet, from, glnode.TypeFloat) + " )"
		}
		return snippet
	}
	if fromLength == toLength {
		return typeName(to) + "( " + snippet + " )"
	}
	if fromLength > toLength {
		if to == glnode.TypeBool {
			snippet = "all( " + snippet + " )"
			return format(typeName, snippet, glnode.TypeBool, to)
		}
		snippet = snippet + "." + swizzle[:toLength]
		return format(typeName, snippet, glnode.TypeFromLength(toLength, from.ComponentType()), to)
	}
	if toLength == 4 && fromLength > 1 {
		return typeName(to) + "( " + format(typeName, snippet, from, glnode.TypeVec3) + ", 1.0 )"
	}
	if fromLength == 2 {
		return typeName(to) + "( " + format(typeName, snippet, from, glnode.TypeVec2) + ", 0.0 )"
	}
	if fromLength == 1 && toLength > 1 && from != to.ComponentType() {
		snippet = typeName(to.ComponentType()) + "( " + snippet + " )"
	}
	return typeName(to) + "( " + snippet + " )"
}

const swizzle = "xyzw"
