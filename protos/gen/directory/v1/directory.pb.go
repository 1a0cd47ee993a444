// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: directory/v1/directory.proto

package directoryv1

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type DoctorPolicyRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	DoctorId      string                 `protobuf:"bytes,1,opt,name=doctor_id,json=doctorId,proto3" json:"doctor_id,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *DoctorPolicyRequest) Reset() {
	*x = DoctorPolicyRequest{}
	mi := &file_directory_v1_directory_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *DoctorPolicyRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*DoctorPolicyRequest) ProtoMessage() {}

func (x *DoctorPolicyRequest) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use DoctorPolicyRequest.ProtoReflect.Descriptor instead.
func (*DoctorPolicyRequest) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{0}
}

func (x *DoctorPolicyRequest) GetDoctorId() string {
	if x != nil {
		return x.DoctorId
	}
	return ""
}

type DoctorPolicyResponse struct {
	state                  protoimpl.MessageState `protogen:"open.v1"`
	DoctorId               string                 `protobuf:"bytes,1,opt,name=doctor_id,json=doctorId,proto3" json:"doctor_id,omitempty"`
	ReminderOffsetsMinutes []int32                `protobuf:"varint,2,rep,packed,name=reminder_offsets_minutes,json=reminderOffsetsMinutes,proto3" json:"reminder_offsets_minutes,omitempty"`
	unknownFields          protoimpl.UnknownFields
	sizeCache              protoimpl.SizeCache
}

func (x *DoctorPolicyResponse) Reset() {
	*x = DoctorPolicyResponse{}
	mi := &file_directory_v1_directory_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *DoctorPolicyResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*DoctorPolicyResponse) ProtoMessage() {}

func (x *DoctorPolicyResponse) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use DoctorPolicyResponse.ProtoReflect.Descriptor instead.
func (*DoctorPolicyResponse) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{1}
}

func (x *DoctorPolicyResponse) GetDoctorId() string {
	if x != nil {
		return x.DoctorId
	}
	return ""
}

func (x *DoctorPolicyResponse) GetReminderOffsetsMinutes() []int32 {
	if x != nil {
		return x.ReminderOffsetsMinutes
	}
	return nil
}

type SpecialtyRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Code          string                 `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *SpecialtyRequest) Reset() {
	*x = SpecialtyRequest{}
	mi := &file_directory_v1_directory_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *SpecialtyRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*SpecialtyRequest) ProtoMessage() {}

func (x *SpecialtyRequest) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use SpecialtyRequest.ProtoReflect.Descriptor instead.
func (*SpecialtyRequest) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{2}
}

func (x *SpecialtyRequest) GetCode() string {
	if x != nil {
		return x.Code
	}
	return ""
}

type SpecialtyResponse struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Code          string                 `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
	Name          string                 `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	HighPrivacy   bool                   `protobuf:"varint,3,opt,name=high_privacy,json=highPrivacy,proto3" json:"high_privacy,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *SpecialtyResponse) Reset() {
	*x = SpecialtyResponse{}
	mi := &file_directory_v1_directory_proto_msgTypes[3]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *SpecialtyResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*SpecialtyResponse) ProtoMessage() {}

func (x *SpecialtyResponse) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[3]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use SpecialtyResponse.ProtoReflect.Descriptor instead.
func (*SpecialtyResponse) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{3}
}

func (x *SpecialtyResponse) GetCode() string {
	if x != nil {
		return x.Code
	}
	return ""
}

func (x *SpecialtyResponse) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *SpecialtyResponse) GetHighPrivacy() bool {
	if x != nil {
		return x.HighPrivacy
	}
	return false
}

var File_directory_v1_directory_proto protoreflect.FileDescriptor

const file_directory_v1_directory_proto_rawDesc = "" +
	"\n" +
	"\x1cdirectory/v1/directory.proto\x12\fdirectory.v1\"2\n" +
	"\x13DoctorPolicyRequest\x12\x1b\n" +
	"\tdoctor_id\x18\x01 \x01(\tR\bdoctorId\"m\n" +
	"\x14DoctorPolicyResponse\x12\x1b\n" +
	"\tdoctor_id\x18\x01 \x01(\tR\bdoctorId\x128\n" +
	"\x18reminder_offsets_minutes\x18\x02 \x03(\x05R\x16reminderOffsetsMinutes\"&\n" +
	"\x10SpecialtyRequest\x12\x12\n" +
	"\x04code\x18\x01 \x01(\tR\x04code\"^\n" +
	"\x11SpecialtyResponse\x12\x12\n" +
	"\x04code\x18\x01 \x01(\tR\x04code\x12\x12\n" +
	"\x04name\x18\x02 \x01(\tR\x04name\x12!\n" +
	"\fhigh_privacy\x18\x03 \x01(\bR\vhighPrivacy2\xbd\x01\n" +
	"\x10DirectoryService\x12X\n" +
	"\x0fGetDoctorPolicy\x12!.directory.v1.DoctorPolicyRequest\x1a\".directory.v1.DoctorPolicyResponse\x12O\n" +
	"\fGetSpecialty\x12\x1e.directory.v1.SpecialtyRequest\x1a\x1f.directory.v1.SpecialtyResponseBBZ@github.com/citaplan/citaplan/protos/gen/directory/v1;directoryv1b\x06proto3"

var (
	file_directory_v1_directory_proto_rawDescOnce sync.Once
	file_directory_v1_directory_proto_rawDescData []byte
)

func file_directory_v1_directory_proto_rawDescGZIP() []byte {
	file_directory_v1_directory_proto_rawDescOnce.Do(func() {
		file_directory_v1_directory_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_directory_v1_directory_proto_rawDesc), len(file_directory_v1_directory_proto_rawDesc)))
	})
	return file_directory_v1_directory_proto_rawDescData
}

var file_directory_v1_directory_proto_msgTypes = make([]protoimpl.MessageInfo, 4)
var file_directory_v1_directory_proto_goTypes = []any{
	(*DoctorPolicyRequest)(nil),  // 0: directory.v1.DoctorPolicyRequest
	(*DoctorPolicyResponse)(nil), // 1: directory.v1.DoctorPolicyResponse
	(*SpecialtyRequest)(nil),     // 2: directory.v1.SpecialtyRequest
	(*SpecialtyResponse)(nil),    // 3: directory.v1.SpecialtyResponse
}
var file_directory_v1_directory_proto_depIdxs = []int32{
	0, // 0: directory.v1.DirectoryService.GetDoctorPolicy:input_type -> directory.v1.DoctorPolicyRequest
	2, // 1: directory.v1.DirectoryService.GetSpecialty:input_type -> directory.v1.SpecialtyRequest
	1, // 2: directory.v1.DirectoryService.GetDoctorPolicy:output_type -> directory.v1.DoctorPolicyResponse
	3, // 3: directory.v1.DirectoryService.GetSpecialty:output_type -> directory.v1.SpecialtyResponse
	2, // [2:4] is the sub-list for method output_type
	0, // [0:2] is the sub-list for method input_type
	0, // [0:0] is the sub-list for extension type_name
	0, // [0:0] is the sub-list for extension extendee
	0, // [0:0] is the sub-list for field type_name
}

func init() { file_directory_v1_directory_proto_init() }
func file_directory_v1_directory_proto_init() {
	if File_directory_v1_directory_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_directory_v1_directory_proto_rawDesc), len(file_directory_v1_directory_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   4,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_directory_v1_directory_proto_goTypes,
		DependencyIndexes: file_directory_v1_directory_proto_depIdxs,
		MessageInfos:      file_directory_v1_directory_proto_msgTypes,
	}.Build()
	File_directory_v1_directory_proto = out.File
	file_directory_v1_directory_proto_goTypes = nil
	file_directory_v1_directory_proto_depIdxs = nil
}
