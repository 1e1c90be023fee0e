package mcubusv1

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// BusEvent is one event as carried on the SubscribeEvents stream.
type BusEvent struct {
	EventId   string
	ModuleId  string
	Timestamp *timestamppb.Timestamp
	// Types that are valid to be assigned to Payload:
	//
	//	*BusEvent_SensorData
	//	*BusEvent_ControlStatus
	//	*BusEvent_Alert
	Payload isBusEvent_Payload
}

type isBusEvent_Payload interface {
	isBusEvent_Payload()
}

type BusEvent_SensorData struct {
	SensorData *SensorData
}

type BusEvent_ControlStatus struct {
	ControlStatus *ControlStatus
}

type BusEvent_Alert struct {
	Alert *AlertEvent
}

func (*BusEvent_SensorData) isBusEvent_Payload()    {}
func (*BusEvent_ControlStatus) isBusEvent_Payload() {}
func (*BusEvent_Alert) isBusEvent_Payload()         {}

func (x *BusEvent) GetEventId() string {
	if x != nil {
		return x.EventId
	}
	return ""
}

func (x *BusEvent) GetModuleId() string {
	if x != nil {
		return x.ModuleId
	}
	return ""
}

func (x *BusEvent) GetTimestamp() *timestamppb.Timestamp {
	if x != nil {
		return x.Timestamp
	}
	return nil
}

func (x *BusEvent) GetPayload() isBusEvent_Payload {
	if x != nil {
		return x.Payload
	}
	return nil
}

func (x *BusEvent) GetSensorData() *SensorData {
	if p, ok := x.GetPayload().(*BusEvent_SensorData); ok {
		return p.SensorData
	}
	return nil
}

func (x *BusEvent) GetControlStatus() *ControlStatus {
	if p, ok := x.GetPayload().(*BusEvent_ControlStatus); ok {
		return p.ControlStatus
	}
	return nil
}

func (x *BusEvent) GetAlert() *AlertEvent {
	if p, ok := x.GetPayload().(*BusEvent_Alert); ok {
		return p.Alert
	}
	return nil
}

// Marshal encodes the event in protobuf binary form.
func (x *BusEvent) Marshal() ([]byte, error) {
	return proto.Marshal(x.toDynamic())
}

// Unmarshal decodes a protobuf binary BusEvent into x.
func (x *BusEvent) Unmarshal(b []byte) error {
	m := dynamicpb.NewMessage(busEventDesc)
	if err := proto.Unmarshal(b, m); err != nil {
		return err
	}
	*x = *busEventFromDynamic(m)
	return nil
}

// MarshalJSON encodes the event with the canonical protobuf JSON mapping.
func (x *BusEvent) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(x.toDynamic())
}

// UnmarshalJSON decodes the canonical protobuf JSON mapping into x.
func (x *BusEvent) UnmarshalJSON(b []byte) error {
	m := dynamicpb.NewMessage(busEventDesc)
	if err := protojson.Unmarshal(b, m); err != nil {
		return err
	}
	*x = *busEventFromDynamic(m)
	return nil
}

func (x *BusEvent) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(busEventDesc)
	setString(m, "event_id", x.GetEventId())
	setString(m, "module_id", x.GetModuleId())
	setTime(m, "timestamp", x.GetTimestamp())
	switch p := x.GetPayload().(type) {
	case *BusEvent_SensorData:
		setMessage(m, "sensor_data", p.SensorData.toDynamic())
	case *BusEvent_ControlStatus:
		setMessage(m, "control_status", p.ControlStatus.toDynamic())
	case *BusEvent_Alert:
		setMessage(m, "alert", p.Alert.toDynamic())
	}
	return m
}

func busEventFromDynamic(m protoreflect.Message) *BusEvent {
	x := &BusEvent{
		EventId:   getString(m, "event_id"),
		ModuleId:  getString(m, "module_id"),
		Timestamp: getTime(m, "timestamp"),
	}
	which := m.WhichOneof(busEventDesc.Oneofs().ByName("payload"))
	if which == nil {
		return x
	}
	child := m.Get(which).Message()
	switch which.Name() {
	case "sensor_data":
		x.Payload = &BusEvent_SensorData{SensorData: sensorDataFromDynamic(child)}
	case "control_status":
		x.Payload = &BusEvent_ControlStatus{ControlStatus: controlStatusFromDynamic(child)}
	case "alert":
		x.Payload = &BusEvent_Alert{Alert: alertEventFromDynamic(child)}
	}
	return x
}

// SensorData is a reading from a module's sensor array.
type SensorData struct {
	Temperature  float64 `json:"temperature,omitempty"`
	Humidity     float64 `json:"humidity,omitempty"`
	SoilMoisture float64 `json:"soil_moisture,omitempty"`
	LightLevel   float64 `json:"light_level,omitempty"`
	WaterLevel   float64 `json:"water_level,omitempty"`
	PhValue      float64 `json:"ph_value,omitempty"`
}

func (x *SensorData) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(sensorDataDesc)
	if x == nil {
		return m
	}
	setDouble(m, "temperature", x.Temperature)
	setDouble(m, "humidity", x.Humidity)
	setDouble(m, "soil_moisture", x.SoilMoisture)
	setDouble(m, "light_level", x.LightLevel)
	setDouble(m, "water_level", x.WaterLevel)
	setDouble(m, "ph_value", x.PhValue)
	return m
}

func sensorDataFromDynamic(m protoreflect.Message) *SensorData {
	return &SensorData{
		Temperature:  getDouble(m, "temperature"),
		Humidity:     getDouble(m, "humidity"),
		SoilMoisture: getDouble(m, "soil_moisture"),
		LightLevel:   getDouble(m, "light_level"),
		WaterLevel:   getDouble(m, "water_level"),
		PhValue:      getDouble(m, "ph_value"),
	}
}

// ControlStatus reports an actuator state change.
type ControlStatus struct {
	Device     string  `json:"device,omitempty"`
	IsActive   bool    `json:"is_active,omitempty"`
	PowerLevel float64 `json:"power_level,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

func (x *ControlStatus) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(controlStatusDesc)
	if x == nil {
		return m
	}
	setString(m, "device", x.Device)
	setBool(m, "is_active", x.IsActive)
	setDouble(m, "power_level", x.PowerLevel)
	setString(m, "reason", x.Reason)
	return m
}

func controlStatusFromDynamic(m protoreflect.Message) *ControlStatus {
	return &ControlStatus{
		Device:     getString(m, "device"),
		IsActive:   getBool(m, "is_active"),
		PowerLevel: getDouble(m, "power_level"),
		Reason:     getString(m, "reason"),
	}
}

// AlertEvent is an alert raised by a module or the daemon.
type AlertEvent struct {
	Severity string `json:"severity,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (x *AlertEvent) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(alertEventDesc)
	if x == nil {
		return m
	}
	setString(m, "severity", x.Severity)
	setString(m, "code", x.Code)
	setString(m, "message", x.Message)
	return m
}

func alertEventFromDynamic(m protoreflect.Message) *AlertEvent {
	return &AlertEvent{
		Severity: getString(m, "severity"),
		Code:     getString(m, "code"),
		Message:  getString(m, "message"),
	}
}

// SubscribeRequest narrows a subscription. Empty lists match everything.
type SubscribeRequest struct {
	ModuleIds  []string `json:"module_ids,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
}

func (x *SubscribeRequest) GetModuleIds() []string {
	if x != nil {
		return x.ModuleIds
	}
	return nil
}

func (x *SubscribeRequest) GetEventTypes() []string {
	if x != nil {
		return x.EventTypes
	}
	return nil
}

func (x *SubscribeRequest) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(subscribeRequestDesc)
	setStrings(m, "module_ids", x.GetModuleIds())
	setStrings(m, "event_types", x.GetEventTypes())
	return m
}

func subscribeRequestFromDynamic(m protoreflect.Message) *SubscribeRequest {
	return &SubscribeRequest{
		ModuleIds:  getStrings(m, "module_ids"),
		EventTypes: getStrings(m, "event_types"),
	}
}

type RegisterRequest struct {
	ModuleId   string            `json:"module_id,omitempty"`
	ModuleType string            `json:"module_type,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (x *RegisterRequest) GetModuleId() string {
	if x != nil {
		return x.ModuleId
	}
	return ""
}

func (x *RegisterRequest) GetModuleType() string {
	if x != nil {
		return x.ModuleType
	}
	return ""
}

func (x *RegisterRequest) GetMetadata() map[string]string {
	if x != nil {
		return x.Metadata
	}
	return nil
}

func (x *RegisterRequest) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(registerRequestDesc)
	setString(m, "module_id", x.GetModuleId())
	setString(m, "module_type", x.GetModuleType())
	setStringMap(m, "metadata", x.GetMetadata())
	return m
}

func registerRequestFromDynamic(m protoreflect.Message) *RegisterRequest {
	return &RegisterRequest{
		ModuleId:   getString(m, "module_id"),
		ModuleType: getString(m, "module_type"),
		Metadata:   getStringMap(m, "metadata"),
	}
}

type RegisterReply struct {
	Success    bool   `json:"success,omitempty"`
	AssignedId string `json:"assigned_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (x *RegisterReply) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(registerReplyDesc)
	if x == nil {
		return m
	}
	setBool(m, "success", x.Success)
	setString(m, "assigned_id", x.AssignedId)
	setString(m, "message", x.Message)
	return m
}

func registerReplyFromDynamic(m protoreflect.Message) *RegisterReply {
	return &RegisterReply{
		Success:    getBool(m, "success"),
		AssignedId: getString(m, "assigned_id"),
		Message:    getString(m, "message"),
	}
}

type UnRegisterRequest struct {
	ModuleId string `json:"module_id,omitempty"`
}

func (x *UnRegisterRequest) GetModuleId() string {
	if x != nil {
		return x.ModuleId
	}
	return ""
}

func (x *UnRegisterRequest) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(unRegisterRequestDesc)
	setString(m, "module_id", x.GetModuleId())
	return m
}

func unRegisterRequestFromDynamic(m protoreflect.Message) *UnRegisterRequest {
	return &UnRegisterRequest{ModuleId: getString(m, "module_id")}
}

type UnRegisterReply struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

func (x *UnRegisterReply) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(unRegisterReplyDesc)
	if x == nil {
		return m
	}
	setBool(m, "success", x.Success)
	setString(m, "message", x.Message)
	return m
}

func unRegisterReplyFromDynamic(m protoreflect.Message) *UnRegisterReply {
	return &UnRegisterReply{
		Success: getBool(m, "success"),
		Message: getString(m, "message"),
	}
}

type ListModulesRequest struct{}

func (x *ListModulesRequest) toDynamic() *dynamicpb.Message {
	return dynamicpb.NewMessage(listModulesRequestDesc)
}

// ModuleInfo describes a registered controller module.
type ModuleInfo struct {
	ModuleId     string                 `json:"module_id,omitempty"`
	ModuleType   string                 `json:"module_type,omitempty"`
	Metadata     map[string]string      `json:"metadata,omitempty"`
	Peer         string                 `json:"peer,omitempty"`
	RegisteredAt *timestamppb.Timestamp `json:"registered_at,omitempty"`
}

func (x *ModuleInfo) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(moduleInfoDesc)
	if x == nil {
		return m
	}
	setString(m, "module_id", x.ModuleId)
	setString(m, "module_type", x.ModuleType)
	setStringMap(m, "metadata", x.Metadata)
	setString(m, "peer", x.Peer)
	setTime(m, "registered_at", x.RegisteredAt)
	return m
}

func moduleInfoFromDynamic(m protoreflect.Message) *ModuleInfo {
	return &ModuleInfo{
		ModuleId:     getString(m, "module_id"),
		ModuleType:   getString(m, "module_type"),
		Metadata:     getStringMap(m, "metadata"),
		Peer:         getString(m, "peer"),
		RegisteredAt: getTime(m, "registered_at"),
	}
}

type ListModulesReply struct {
	Modules []*ModuleInfo `json:"modules,omitempty"`
}

func (x *ListModulesReply) GetModules() []*ModuleInfo {
	if x != nil {
		return x.Modules
	}
	return nil
}

func (x *ListModulesReply) toDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(listModulesReplyDesc)
	if len(x.GetModules()) == 0 {
		return m
	}
	list := m.Mutable(field(m, "modules")).List()
	for _, mod := range x.Modules {
		list.Append(protoreflect.ValueOfMessage(mod.toDynamic()))
	}
	return m
}

func listModulesReplyFromDynamic(m protoreflect.Message) *ListModulesReply {
	list := m.Get(field(m, "modules")).List()
	x := &ListModulesReply{Modules: make([]*ModuleInfo, 0, list.Len())}
	for i := range list.Len() {
		x.Modules = append(x.Modules, moduleInfoFromDynamic(list.Get(i).Message()))
	}
	return x
}

func field(m protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(name)
}

func setString(m protoreflect.Message, name protoreflect.Name, v string) {
	if v != "" {
		m.Set(field(m, name), protoreflect.ValueOfString(v))
	}
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(field(m, name)).String()
}

func setDouble(m protoreflect.Message, name protoreflect.Name, v float64) {
	if v != 0 {
		m.Set(field(m, name), protoreflect.ValueOfFloat64(v))
	}
}

func getDouble(m protoreflect.Message, name protoreflect.Name) float64 {
	return m.Get(field(m, name)).Float()
}

func setBool(m protoreflect.Message, name protoreflect.Name, v bool) {
	if v {
		m.Set(field(m, name), protoreflect.ValueOfBool(v))
	}
}

func getBool(m protoreflect.Message, name protoreflect.Name) bool {
	return m.Get(field(m, name)).Bool()
}

func setMessage(m protoreflect.Message, name protoreflect.Name, child protoreflect.ProtoMessage) {
	m.Set(field(m, name), protoreflect.ValueOfMessage(child.ProtoReflect()))
}

func setStrings(m protoreflect.Message, name protoreflect.Name, values []string) {
	if len(values) == 0 {
		return
	}
	list := m.Mutable(field(m, name)).List()
	for _, v := range values {
		list.Append(protoreflect.ValueOfString(v))
	}
}

func getStrings(m protoreflect.Message, name protoreflect.Name) []string {
	list := m.Get(field(m, name)).List()
	if list.Len() == 0 {
		return nil
	}
	out := make([]string, 0, list.Len())
	for i := range list.Len() {
		out = append(out, list.Get(i).String())
	}
	return out
}

func setStringMap(m protoreflect.Message, name protoreflect.Name, values map[string]string) {
	if len(values) == 0 {
		return
	}
	mp := m.Mutable(field(m, name)).Map()
	for k, v := range values {
		mp.Set(protoreflect.ValueOfString(k).MapKey(), protoreflect.ValueOfString(v))
	}
}

func getStringMap(m protoreflect.Message, name protoreflect.Name) map[string]string {
	mp := m.Get(field(m, name)).Map()
	if mp.Len() == 0 {
		return nil
	}
	out := make(map[string]string, mp.Len())
	mp.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
		out[k.String()] = v.String()
		return true
	})
	return out
}

// setTime stores ts as a google.protobuf.Timestamp built against the
// descriptor of the field, so the parent stays fully dynamic.
func setTime(m protoreflect.Message, name protoreflect.Name, ts *timestamppb.Timestamp) {
	if ts == nil {
		return
	}
	fd := field(m, name)
	tm := dynamicpb.NewMessage(fd.Message())
	fields := fd.Message().Fields()
	tm.Set(fields.ByName("seconds"), protoreflect.ValueOfInt64(ts.GetSeconds()))
	tm.Set(fields.ByName("nanos"), protoreflect.ValueOfInt32(ts.GetNanos()))
	m.Set(fd, protoreflect.ValueOfMessage(tm))
}

func getTime(m protoreflect.Message, name protoreflect.Name) *timestamppb.Timestamp {
	fd := field(m, name)
	if !m.Has(fd) {
		return nil
	}
	tm := m.Get(fd).Message()
	fields := tm.Descriptor().Fields()
	return &timestamppb.Timestamp{
		Seconds: tm.Get(fields.ByName("seconds")).Int(),
		Nanos:   int32(tm.Get(fields.ByName("nanos")).Int()),
	}
}
