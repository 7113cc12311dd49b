// Package onnxtest provides hand-built ONNX model blobs and stub engine
// runtimes for tests. The blobs carry only boundary metadata, which is all
// the scoring core reads.
package onnxtest

// Dim is one dimension of a node spec: a concrete extent, or a symbolic
// parameter when Param is non-empty.
type Dim struct {
	Value int64
	Param string
}

// NodeSpec describes one graph input or output to encode.
type NodeSpec struct {
	Name string
	Elem int32 // ONNX element type code
	Dims []Dim
}

// ModelBytes encodes a minimal ONNX ModelProto with the given graph
// boundary. Initializer names are encoded as weight stubs so loaders can
// exercise the initializer-exclusion path.
func ModelBytes(inputs, outputs []NodeSpec, initializers ...string) []byte {
	var graph []byte
	graph = appendBytesField(graph, 2, []byte("g"))
	for _, name := range initializers {
		var init []byte
		init = appendBytesField(init, 8, []byte(name))
		graph = appendBytesField(graph, 5, init)
	}
	for _, in := range inputs {
		graph = appendBytesField(graph, 11, valueInfo(in))
	}
	for _, out := range outputs {
		graph = appendBytesField(graph, 12, valueInfo(out))
	}

	var opset []byte
	opset = appendVarintField(opset, 2, 13)

	var model []byte
	model = appendVarintField(model, 1, 8) // ir_version
	model = appendBytesField(model, 2, []byte("onnxtest"))
	model = appendBytesField(model, 7, graph)
	model = appendBytesField(model, 8, opset)
	return model
}

func valueInfo(n NodeSpec) []byte {
	var shape []byte
	for _, d := range n.Dims {
		var dim []byte
		if d.Param != "" {
			dim = appendBytesField(dim, 2, []byte(d.Param))
		} else {
			dim = appendVarintField(dim, 1, d.Value)
		}
		shape = appendBytesField(shape, 1, dim)
	}

	var tensorType []byte
	tensorType = appendVarintField(tensorType, 1, int64(n.Elem))
	tensorType = appendBytesField(tensorType, 2, shape)

	var typ []byte
	typ = appendBytesField(typ, 1, tensorType)

	var vi []byte
	vi = appendBytesField(vi, 1, []byte(n.Name))
	vi = appendBytesField(vi, 2, typ)
	return vi
}

func appendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func appendVarintField(dst []byte, field int, v int64) []byte {
	dst = appendVarint(dst, uint64(field)<<3|0) //nolint:gosec // G115: small test values.
	return appendVarint(dst, uint64(v))         //nolint:gosec // G115: small test values.
}

func appendBytesField(dst []byte, field int, data []byte) []byte {
	dst = appendVarint(dst, uint64(field)<<3|2) //nolint:gosec // G115: small test values.
	dst = appendVarint(dst, uint64(len(data)))
	return append(dst, data...)
}
