package committer

import fmt "fmt"

// CommitPartialSignatureRequest is the wire message for the committer
// server's inbound RPC: id_address, chain_id,
// task_type, request_id, message, partial_signature. Hand-declared
// against the legacy golang/protobuf reflection codec — no .proto file
// or protoc-gen-go stub backs this, since the codec marshals any
// struct carrying the right field tags.
type CommitPartialSignatureRequest struct {
	IdAddress        []byte `protobuf:"bytes,1,opt,name=id_address,json=idAddress,proto3" json:"id_address,omitempty"`
	ChainId          uint32 `protobuf:"varint,2,opt,name=chain_id,json=chainId,proto3" json:"chain_id,omitempty"`
	TaskType         int32  `protobuf:"varint,3,opt,name=task_type,json=taskType,proto3" json:"task_type,omitempty"`
	RequestId        []byte `protobuf:"bytes,4,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
	Message          []byte `protobuf:"bytes,5,opt,name=message,proto3" json:"message,omitempty"`
	PartialSignature []byte `protobuf:"bytes,6,opt,name=partial_signature,json=partialSignature,proto3" json:"partial_signature,omitempty"`
}

func (m *CommitPartialSignatureRequest) Reset()         { *m = CommitPartialSignatureRequest{} }
func (m *CommitPartialSignatureRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommitPartialSignatureRequest) ProtoMessage()    {}

// CommitPartialSignatureResponse carries the boolean result for this
// RPC's reply.
type CommitPartialSignatureResponse struct {
	Result bool `protobuf:"varint,1,opt,name=result,proto3" json:"result,omitempty"`
}

func (m *CommitPartialSignatureResponse) Reset()         { *m = CommitPartialSignatureResponse{} }
func (m *CommitPartialSignatureResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommitPartialSignatureResponse) ProtoMessage()    {}
