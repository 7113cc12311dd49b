package onnx

// ONNX protobuf data structures (hand-written). Only the messages needed to
// read model-level and graph input/output metadata are modeled; node bodies
// and weight payloads are skipped by the parser.

// ModelProto represents an ONNX model.
type ModelProto struct {
	IRVersion       int64           // IR version (e.g., 7, 8, 9)
	OpsetImport     []OperatorSetID // Opset version(s)
	ProducerName    string          // Framework name (e.g., "pytorch", "tf")
	ProducerVersion string          // Framework version
	Domain          string          // Model domain
	ModelVersion    int64           // Model version number
	Graph           *GraphProto     // Computation graph
}

// GraphProto represents the computation graph. Node bodies are not retained;
// only the information needed to describe the model boundary survives.
type GraphProto struct {
	Name             string           // Graph name
	Inputs           []ValueInfoProto // Graph inputs
	Outputs          []ValueInfoProto // Graph outputs
	InitializerNames []string         // Weight tensor names (to exclude from inputs)
}

// ValueInfoProto describes input/output tensor specifications.
type ValueInfoProto struct {
	Name string     // Tensor name
	Type *TypeProto // Tensor type information
}

// TypeProto describes tensor type.
type TypeProto struct {
	TensorType *TensorTypeProto // Tensor type (only supported variant)
}

// TensorTypeProto describes element type and shape.
type TensorTypeProto struct {
	ElemType int32             // ONNX element type code
	Shape    *TensorShapeProto // Tensor shape
}

// TensorShapeProto describes tensor dimensions.
type TensorShapeProto struct {
	Dims []DimensionProto
}

// DimensionProto describes a single dimension: either a concrete extent or
// a named symbolic parameter.
type DimensionProto struct {
	DimValue int64  // Concrete dimension (0 when symbolic)
	DimParam string // Symbolic dimension name (e.g., "batch_size")
}

// OperatorSetID identifies an opset domain/version pair.
type OperatorSetID struct {
	Domain  string
	Version int64
}

// ONNX TensorProto element type codes (subset with a host mapping).
const (
	ElemFloat  int32 = 1
	ElemUint8  int32 = 2
	ElemInt8   int32 = 3
	ElemUint16 int32 = 4
	ElemInt16  int32 = 5
	ElemInt32  int32 = 6
	ElemInt64  int32 = 7
	ElemString int32 = 8
	ElemBool   int32 = 9
	ElemDouble int32 = 11
	ElemUint32 int32 = 12
	ElemUint64 int32 = 13
)
