// Package message encodes simulation snapshots as protobuf messages.
//
//	message Vec3 { float x = 1; float y = 2; float z = 3; }
//
//	message AgentState {
//	  uint32 id = 1;
//	  Vec3 position = 2;
//	  Vec3 velocity = 3;
//	  Vec3 desired = 4;
//	  float radius = 5;
//	  bool locked = 6;
//	}
//
//	message Snapshot {
//	  uint64 tick = 1;
//	  double time = 2;
//	  repeated AgentState agents = 3;
//	}
package message

import (
	"errors"
	"fmt"

	"github.com/gorustyt/gorvo/common"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

var ErrMalformed = errors.New("message: malformed snapshot")

type AgentState struct {
	ID       uint32
	Position common.Vec3
	Velocity common.Vec3
	Desired  common.Vec3
	Radius   float32
	Locked   bool
}

type Snapshot struct {
	Tick   uint64
	Time   float64
	Agents []AgentState
}

type fields map[string]protoreflect.FieldDescriptor

var vec3Desc, agentDesc, snapshotDesc protoreflect.MessageDescriptor

var vec3Fields, agentFields, snapshotFields fields

func field(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}

func fieldsOf(md protoreflect.MessageDescriptor) fields {
	fs := fields{}
	for i := 0; i < md.Fields().Len(); i++ {
		f := md.Fields().Get(i)
		fs[string(f.Name())] = f
	}
	return fs
}

func init() {
	const (
		floatType = descriptorpb.FieldDescriptorProto_TYPE_FLOAT
		msgType   = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)
	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("gorvo/message/snapshot.proto"),
		Package: proto.String("gorvo.message"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Vec3"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("x", 1, floatType, ""),
					field("y", 2, floatType, ""),
					field("z", 3, floatType, ""),
				},
			},
			{
				Name: proto.String("AgentState"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("id", 1, descriptorpb.FieldDescriptorProto_TYPE_UINT32, ""),
					field("position", 2, msgType, ".gorvo.message.Vec3"),
					field("velocity", 3, msgType, ".gorvo.message.Vec3"),
					field("desired", 4, msgType, ".gorvo.message.Vec3"),
					field("radius", 5, floatType, ""),
					field("locked", 6, descriptorpb.FieldDescriptorProto_TYPE_BOOL, ""),
				},
			},
			{
				Name: proto.String("Snapshot"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("tick", 1, descriptorpb.FieldDescriptorProto_TYPE_UINT64, ""),
					field("time", 2, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE, ""),
					{
						Name:     proto.String("agents"),
						Number:   proto.Int32(3),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
						Type:     msgType.Enum(),
						TypeName: proto.String(".gorvo.message.AgentState"),
					},
				},
			},
		},
	}
	file, err := protodesc.NewFile(fd, new(protoregistry.Files))
	if err != nil {
		panic(err)
	}
	vec3Desc = file.Messages().ByName("Vec3")
	agentDesc = file.Messages().ByName("AgentState")
	snapshotDesc = file.Messages().ByName("Snapshot")
	vec3Fields, agentFields, snapshotFields = fieldsOf(vec3Desc), fieldsOf(agentDesc), fieldsOf(snapshotDesc)
}

func setVec3(m protoreflect.Message, v common.Vec3) {
	m.Set(vec3Fields["x"], protoreflect.ValueOfFloat32(v[0]))
	m.Set(vec3Fields["y"], protoreflect.ValueOfFloat32(v[1]))
	m.Set(vec3Fields["z"], protoreflect.ValueOfFloat32(v[2]))
}

func getVec3(m protoreflect.Message) common.Vec3 {
	return common.Vec3{
		float32(m.Get(vec3Fields["x"]).Float()),
		float32(m.Get(vec3Fields["y"]).Float()),
		float32(m.Get(vec3Fields["z"]).Float()),
	}
}

func newSnapshotMessage(s *Snapshot) *dynamicpb.Message {
	m := dynamicpb.NewMessage(snapshotDesc)
	m.Set(snapshotFields["tick"], protoreflect.ValueOfUint64(s.Tick))
	m.Set(snapshotFields["time"], protoreflect.ValueOfFloat64(s.Time))
	list := m.Mutable(snapshotFields["agents"]).List()
	for i := range s.Agents {
		a := &s.Agents[i]
		v := list.NewElement()
		am := v.Message()
		am.Set(agentFields["id"], protoreflect.ValueOfUint32(a.ID))
		setVec3(am.Mutable(agentFields["position"]).Message(), a.Position)
		setVec3(am.Mutable(agentFields["velocity"]).Message(), a.Velocity)
		setVec3(am.Mutable(agentFields["desired"]).Message(), a.Desired)
		am.Set(agentFields["radius"], protoreflect.ValueOfFloat32(a.Radius))
		am.Set(agentFields["locked"], protoreflect.ValueOfBool(a.Locked))
		list.Append(v)
	}
	return m
}

// EncodeSnapshot appends the encoding of s to b.
func EncodeSnapshot(b []byte, s *Snapshot) []byte {
	b, err := proto.MarshalOptions{Deterministic: true}.MarshalAppend(b, newSnapshotMessage(s))
	if err != nil {
		panic(err)
	}
	return b
}

func DecodeSnapshot(b []byte) (*Snapshot, error) {
	m := dynamicpb.NewMessage(snapshotDesc)
	if err := proto.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s := &Snapshot{
		Tick: m.Get(snapshotFields["tick"]).Uint(),
		Time: m.Get(snapshotFields["time"]).Float(),
	}
	list := m.Get(snapshotFields["agents"]).List()
	s.Agents = make([]AgentState, list.Len())
	for i := range s.Agents {
		am := list.Get(i).Message()
		s.Agents[i] = AgentState{
			ID:       uint32(am.Get(agentFields["id"]).Uint()),
			Position: getVec3(am.Get(agentFields["position"]).Message()),
			Velocity: getVec3(am.Get(agentFields["velocity"]).Message()),
			Desired:  getVec3(am.Get(agentFields["desired"]).Message()),
			Radius:   float32(am.Get(agentFields["radius"]).Float()),
			Locked:   am.Get(agentFields["locked"]).Bool(),
		}
	}
	return s, nil
}
