package glnode

import "encoding/binary"

const cacheKeySeed = 0xff51afd7ed558ccd

// CacheKey returns the structural hash of n over its children's cache keys and
// its [CacheKeyer] value. The key is memoized on the node and recomputed only when
// force is set or the node's version changed since it was last computed.
// Children are always asked for their memoized key, so mutating a leaf requires
// bumping the version of the leaf and of every ancestor whose key must change,
// or forcing the computation at the root.
func CacheKey(n Node, force bool) uint64 {
	return cacheKey(n, force, nil)
}

func cacheKey(n Node, force bool, visiting map[Node]struct{}) uint64 {
	nb := n.NodeBase()
	if !force && nb.cacheKeyValid && nb.cacheKeyVersion == nb.version {
		return nb.cacheKey
	}
	if visiting == nil {
		visiting = make(map[Node]struct{})
	}
	if _, cyclic := visiting[n]; cyclic {
		return cacheKeySeed
	}
	visiting[n] = struct{}{}
	var buf [8]byte
	key := uint64(cacheKeySeed)
	n.ForEachChild(nil, func(_ any, name string, child *Node) error {
		key = hashString(name, key)
		if *child != nil {
			binary.LittleEndian.PutUint64(buf[:], cacheKey(*child, force, visiting))
			key = hash(buf[:], key)
		}
		return nil
	})
	var custom uint64
	if ck, ok := n.(CacheKeyer); ok {
		custom = ck.CustomCacheKey()
	}
	binary.LittleEndian.PutUint64(buf[:], custom)
	key = hash(buf[:], key)
	delete(visiting, n)

	nb.cacheKey = key
	nb.cacheKeyVersion = nb.version
	nb.cacheKeyValid = true
	return key
}

// HashString returns the 64 bit hash of s, used by nodes to fold names into their cache key.
func HashString(s string) uint64 {
	return hashString(s, cacheKeySeed)
}

// HashValues folds a sequence of scalars into a single key.
func HashValues(vals ...uint64) uint64 {
	var buf [8]byte
	key := uint64(cacheKeySeed)
	for _, v := range vals {
		binary.LittleEndian.PutUint64(buf[:], v)
		key = hash(buf[:], key)
	}
	return key
}

func hashString(s string, in uint64) uint64 {
	return hash([]byte(s), in)
}

// hash mixes b into in with the splitmix64 finalizer, 8 bytes at a time.
func hash(b []byte, in uint64) uint64 {
	x := in
	for len(b) >= 8 {
		x = mix(x ^ binary.LittleEndian.Uint64(b))
		b = b[8:]
	}
	if len(b) > 0 {
		var buf [8]byte
		copy(buf[:], b)
		x = mix(x ^ binary.LittleEndian.Uint64(buf[:]))
	}
	return x
}

func mix(x uint64) uint64 {
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
