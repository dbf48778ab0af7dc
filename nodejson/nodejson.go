// Package nodejson serializes glnode graphs to JSON keyed by node UUID.
// Node kinds are encoded by registered codecs. Textures and their images are
// stored in separate tables so shared resources are written once.
package nodejson

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/soypat/glnode"
)

const (
	FormatVersion = 1
	FormatType    = "Node"
	generator     = "glnode.nodejson"
)

// Metadata identifies a serialized document.
type Metadata struct {
	Version   int    `json:"version"`
	Type      string `json:"type"`
	Generator string `json:"generator"`
}

// Document is the JSON representation of a node graph.
type Document struct {
	Metadata Metadata `json:"metadata"`
	// Roots lists the UUIDs of the encoded root nodes in order.
	Roots    []string                `json:"roots"`
	Nodes    map[string]*NodeData    `json:"nodes"`
	Textures map[string]*TextureData `json:"textures,omitempty"`
	Images   map[string]*ImageData   `json:"images,omitempty"`
}

// NodeData is a serialized node.
type NodeData struct {
	UUID string `json:"uuid"`
	// Type is the node kind, i.e. "OperatorNode".
	Type     string `json:"type"`
	NodeType string `json:"nodeType,omitempty"`
	Global   bool   `json:"global,omitempty"`
	// Inputs maps child names to node UUIDs.
	Inputs map[string]string `json:"inputNodes,omitempty"`
	Data   json.RawMessage   `json:"data,omitempty"`
}

// TextureData is a serialized texture referencing an image.
type TextureData struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// ImageData is an image stored as a data URL.
type ImageData struct {
	UUID string `json:"uuid"`
	URL  string `json:"url"`
}

// Codec encodes and decodes the kind specific data of a node. Children are
// handled by the document through [glnode.Node.ForEachChild].
type Codec struct {
	// Encode returns the JSON marshalable data of n, or nil.
	Encode func(e *Encoder, n glnode.Node) (any, error)
	// Decode returns a node with unset children from its data.
	Decode func(d *Decoder, data json.RawMessage) (glnode.Node, error)
}

var codecs = map[string]Codec{}

// Register sets the codec of a node kind as named by [glnode.TypeName].
func Register(typeName string, c Codec) {
	if c.Encode == nil || c.Decode == nil {
		panic("incomplete codec for " + typeName)
	}
	codecs[typeName] = c
}

// Encoder builds a [Document].
type Encoder struct {
	// MaxImageSize downscales images whose largest side exceeds it. Zero keeps the original size.
	MaxImageSize int

	doc      *Document
	visited  map[string]bool
	imageIDs map[string]string // image data URL to image UUID.
}

// Encode serializes the graphs rooted at roots.
func (e *Encoder) Encode(roots ...glnode.Node) (*Document, error) {
	e.doc = &Document{
		Metadata: Metadata{Version: FormatVersion, Type: FormatType, Generator: generator},
		Nodes:    make(map[string]*NodeData),
	}
	e.visited = make(map[string]bool)
	e.imageIDs = make(map[string]string)
	for _, root := range roots {
		if err := glnode.Validate(root); err != nil {
			return nil, err
		}
		id, err := e.encode(root)
		if err != nil {
			return nil, err
		}
		e.doc.Roots = append(e.doc.Roots, id)
	}
	return e.doc, nil
}

func (e *Encoder) encode(n glnode.Node) (string, error) {
	nb := n.NodeBase()
	id := nb.UUID()
	if e.visited[id] {
		return id, nil
	}
	e.visited[id] = true
	typeName := glnode.TypeName(n)
	codec, ok := codecs[typeName]
	if !ok {
		return "", fmt.Errorf("no codec registered for %s", typeName)
	}
	nd := &NodeData{UUID: id, Type: typeName, Global: nb.Global}
	if t := n.NodeType(nil, glnode.TypeNone); t != glnode.TypeNone {
		nd.NodeType = t.String()
	}
	data, err := codec.Encode(e, n)
	if err != nil {
		return "", fmt.Errorf("encoding %s %s: %w", typeName, id, err)
	}
	if data != nil {
		nd.Data, err = json.Marshal(data)
		if err != nil {
			return "", err
		}
	}
	e.doc.Nodes[id] = nd
	err = n.ForEachChild(nil, func(_ any, name string, child *glnode.Node) error {
		if *child == nil {
			return nil
		}
		childID, err := e.encode(*child)
		if err != nil {
			return err
		}
		if nd.Inputs == nil {
			nd.Inputs = make(map[string]string)
		}
		nd.Inputs[name] = childID
		return nil
	})
	return id, err
}

// Decoder rebuilds nodes from a [Document].
type Decoder struct {
	doc      *Document
	nodes    map[string]glnode.Node
	textures map[string]*glnode.Texture
}

// Decode returns the root nodes of doc. Nodes keep their serialized UUIDs.
func (d *Decoder) Decode(doc *Document) ([]glnode.Node, error) {
	if doc.Metadata.Type != FormatType {
		return nil, fmt.Errorf("unexpected document type %q", doc.Metadata.Type)
	}
	if doc.Metadata.Version > FormatVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Metadata.Version)
	}
	d.doc = doc
	d.nodes = make(map[string]glnode.Node, len(doc.Nodes))
	d.textures = make(map[string]*glnode.Texture)

	ids := make([]string, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		nd := doc.Nodes[id]
		codec, ok := codecs[nd.Type]
		if !ok {
			return nil, fmt.Errorf("node %s: no codec registered for %s", id, nd.Type)
		}
		n, err := codec.Decode(d, nd.Data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", nd.Type, id, err)
		}
		nb := n.NodeBase()
		if err := nb.SetUUID(id); err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		nb.Global = nb.Global || nd.Global
		d.nodes[id] = n
	}
	var errs []error
	for _, id := range ids {
		nd := doc.Nodes[id]
		used := 0
		d.nodes[id].ForEachChild(nil, func(_ any, name string, child *glnode.Node) error {
			childID, ok := nd.Inputs[name]
			if !ok {
				return nil
			}
			used++
			if *child = d.nodes[childID]; *child == nil {
				errs = append(errs, fmt.Errorf("node %s input %s: missing node %s", id, name, childID))
			}
			return nil
		})
		if used != len(nd.Inputs) {
			errs = append(errs, fmt.Errorf("node %s: %d unknown inputs", id, len(nd.Inputs)-used))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	roots := make([]glnode.Node, len(doc.Roots))
	for i, id := range doc.Roots {
		if roots[i] = d.nodes[id]; roots[i] == nil {
			return nil, fmt.Errorf("missing root node %s", id)
		}
		if err := glnode.Validate(roots[i]); err != nil {
			return nil, err
		}
	}
	return roots, nil
}

// Marshal encodes the graphs rooted at roots as indented JSON.
func Marshal(roots ...glnode.Node) ([]byte, error) {
	var e Encoder
	doc, err := e.Encode(roots...)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "\t")
}

// Unmarshal decodes the root nodes of a JSON document.
func Unmarshal(data []byte) ([]glnode.Node, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var d Decoder
	return d.Decode(&doc)
}
