// Package imagegenv1 holds the protobuf messages and gRPC stubs of the
// ImageGen service, generated from image_gen.proto.
package imagegenv1

//go:generate protoc -I ../../.. --go_out=../../.. --go_opt=paths=source_relative --go-grpc_out=../../.. --go-grpc_opt=paths=source_relative api/imagegen/v1/image_gen.proto
