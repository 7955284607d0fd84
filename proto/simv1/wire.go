// ABOUTME: Protowire encoding for the adksim.v1 messages defined in types.go
// ABOUTME: Each marshal func documents its field layout; unknown fields are skipped on parse

package simv1

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Message is implemented by every adksim.v1 message. The encoding is
// standard protobuf; MarshalWire output round-trips through any generated
// parser for the same field layout.
type Message interface {
	MarshalWire() ([]byte, error)
	UnmarshalWire(data []byte) error
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendMessage(b []byte, num protowire.Number, m Message) ([]byte, error) {
	sub, err := m.MarshalWire()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub), nil
}

// appendProto embeds a well-known type (Timestamp, Struct) as a nested field.
func appendProto(b []byte, num protowire.Number, m proto.Message) ([]byte, error) {
	sub, err := proto.Marshal(m)
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub), nil
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeFloat(b []byte) (float32, int, error) {
	v, n := protowire.ConsumeFixed32(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return math.Float32frombits(v), n, nil
}

func consumeMessage(b []byte, m Message) (int, error) {
	sub, n, err := consumeBytes(b)
	if err != nil {
		return 0, err
	}
	return n, m.UnmarshalWire(sub)
}

func consumeProto(b []byte, m proto.Message) (int, error) {
	sub, n, err := consumeBytes(b)
	if err != nil {
		return 0, err
	}
	return n, proto.Unmarshal(sub, m)
}

// skipField discards a field that parsing does not recognize.
func skipField(b []byte, num protowire.Number, typ protowire.Type) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

// SimulatorSession layout:
//
//	1 id (string), 2 created_at (google.protobuf.Timestamp),
//	3 description (string), 4 status (SessionStatus enum)
func (m *SimulatorSession) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	b = appendString(b, 1, m.Id)
	if m.CreatedAt != nil {
		if b, err = appendProto(b, 2, m.CreatedAt); err != nil {
			return nil, err
		}
	}
	b = appendString(b, 3, m.Description)
	b = appendInt32(b, 4, int32(m.Status))
	return b, nil
}

func (m *SimulatorSession) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Id, n, err = consumeString(data)
		case 2:
			m.CreatedAt = &timestamppb.Timestamp{}
			n, err = consumeProto(data, m.CreatedAt)
		case 3:
			m.Description, n, err = consumeString(data)
		case 4:
			var v uint64
			v, n, err = consumeVarint(data)
			m.Status = SessionStatus(int32(v))
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("SimulatorSession field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// SessionEvent layout:
//
//	1 event_id (string), 2 session_id (string),
//	3 timestamp (google.protobuf.Timestamp), 4 turn_id (string),
//	5 agent_name (string),
//	oneof payload: 6 llm_request, 7 llm_response, 8 history_complete
func (m *SessionEvent) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	b = appendString(b, 1, m.EventId)
	b = appendString(b, 2, m.SessionId)
	if m.Timestamp != nil {
		if b, err = appendProto(b, 3, m.Timestamp); err != nil {
			return nil, err
		}
	}
	b = appendString(b, 4, m.TurnId)
	b = appendString(b, 5, m.AgentName)
	switch p := m.Payload.(type) {
	case *LlmRequestPayload:
		b, err = appendMessage(b, 6, p.LlmRequest)
	case *LlmResponsePayload:
		b, err = appendMessage(b, 7, p.LlmResponse)
	case *HistoryCompletePayload:
		b, err = appendMessage(b, 8, p.HistoryComplete)
	case nil:
	default:
		err = fmt.Errorf("unknown SessionEvent payload %T", p)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (m *SessionEvent) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.EventId, n, err = consumeString(data)
		case 2:
			m.SessionId, n, err = consumeString(data)
		case 3:
			m.Timestamp = &timestamppb.Timestamp{}
			n, err = consumeProto(data, m.Timestamp)
		case 4:
			m.TurnId, n, err = consumeString(data)
		case 5:
			m.AgentName, n, err = consumeString(data)
		case 6:
			req := &GenericLlmRequest{}
			n, err = consumeMessage(data, req)
			m.Payload = &LlmRequestPayload{LlmRequest: req}
		case 7:
			resp := &GenericLlmResponse{}
			n, err = consumeMessage(data, resp)
			m.Payload = &LlmResponsePayload{LlmResponse: resp}
		case 8:
			hc := &HistoryComplete{}
			n, err = consumeMessage(data, hc)
			m.Payload = &HistoryCompletePayload{HistoryComplete: hc}
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("SessionEvent field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// HistoryComplete layout: 1 event_count (int32)
func (m *HistoryComplete) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendInt32(b, 1, m.EventCount)
	return b, nil
}

func (m *HistoryComplete) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			var v uint64
			v, n, err = consumeVarint(data)
			m.EventCount = int32(int64(v))
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("HistoryComplete field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// GenericLlmRequest layout:
//
//	1 model (string), 2 contents (repeated Content),
//	3 system_instruction (Content), 4 generation_config (GenerationConfig)
func (m *GenericLlmRequest) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	b = appendString(b, 1, m.Model)
	for _, c := range m.Contents {
		if b, err = appendMessage(b, 2, c); err != nil {
			return nil, err
		}
	}
	if m.SystemInstruction != nil {
		if b, err = appendMessage(b, 3, m.SystemInstruction); err != nil {
			return nil, err
		}
	}
	if m.GenerationConfig != nil {
		if b, err = appendMessage(b, 4, m.GenerationConfig); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *GenericLlmRequest) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Model, n, err = consumeString(data)
		case 2:
			c := &Content{}
			n, err = consumeMessage(data, c)
			m.Contents = append(m.Contents, c)
		case 3:
			m.SystemInstruction = &Content{}
			n, err = consumeMessage(data, m.SystemInstruction)
		case 4:
			m.GenerationConfig = &GenerationConfig{}
			n, err = consumeMessage(data, m.GenerationConfig)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("GenericLlmRequest field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// GenericLlmResponse layout:
//
//	1 candidates (repeated Candidate), 2 usage_metadata (UsageMetadata)
func (m *GenericLlmResponse) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	for _, c := range m.Candidates {
		if b, err = appendMessage(b, 1, c); err != nil {
			return nil, err
		}
	}
	if m.UsageMetadata != nil {
		if b, err = appendMessage(b, 2, m.UsageMetadata); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *GenericLlmResponse) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			c := &Candidate{}
			n, err = consumeMessage(data, c)
			m.Candidates = append(m.Candidates, c)
		case 2:
			m.UsageMetadata = &UsageMetadata{}
			n, err = consumeMessage(data, m.UsageMetadata)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("GenericLlmResponse field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// Content layout: 1 role (string), 2 parts (repeated Part)
func (m *Content) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	b = appendString(b, 1, m.Role)
	for _, p := range m.Parts {
		if b, err = appendMessage(b, 2, p); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *Content) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Role, n, err = consumeString(data)
		case 2:
			p := &Part{}
			n, err = consumeMessage(data, p)
			m.Parts = append(m.Parts, p)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("Content field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// Part layout, oneof data:
//
//	1 text (string), 2 function_call (FunctionCall),
//	3 function_response (FunctionResponse)
func (m *Part) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	switch d := m.Data.(type) {
	case *PartText:
		// Oneof members are always emitted, even when zero-valued.
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, d.Text)
	case *PartFunctionCall:
		b, err = appendMessage(b, 2, d.FunctionCall)
	case *PartFunctionResponse:
		b, err = appendMessage(b, 3, d.FunctionResponse)
	case nil:
	default:
		err = fmt.Errorf("unknown Part data %T", d)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (m *Part) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			var s string
			s, n, err = consumeString(data)
			m.Data = &PartText{Text: s}
		case 2:
			fc := &FunctionCall{}
			n, err = consumeMessage(data, fc)
			m.Data = &PartFunctionCall{FunctionCall: fc}
		case 3:
			fr := &FunctionResponse{}
			n, err = consumeMessage(data, fr)
			m.Data = &PartFunctionResponse{FunctionResponse: fr}
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("Part field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// FunctionCall layout: 1 name (string), 2 args (google.protobuf.Struct)
func (m *FunctionCall) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	b = appendString(b, 1, m.Name)
	if m.Args != nil {
		if b, err = appendProto(b, 2, m.Args); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *FunctionCall) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Name, n, err = consumeString(data)
		case 2:
			m.Args = &structpb.Struct{}
			n, err = consumeProto(data, m.Args)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("FunctionCall field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// FunctionResponse layout: 1 name (string), 2 response (google.protobuf.Struct)
func (m *FunctionResponse) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	b = appendString(b, 1, m.Name)
	if m.Response != nil {
		if b, err = appendProto(b, 2, m.Response); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *FunctionResponse) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Name, n, err = consumeString(data)
		case 2:
			m.Response = &structpb.Struct{}
			n, err = consumeProto(data, m.Response)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("FunctionResponse field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// Candidate layout: 1 content (Content), 2 finish_reason (string)
func (m *Candidate) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	if m.Content != nil {
		if b, err = appendMessage(b, 1, m.Content); err != nil {
			return nil, err
		}
	}
	b = appendString(b, 2, m.FinishReason)
	return b, nil
}

func (m *Candidate) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Content = &Content{}
			n, err = consumeMessage(data, m.Content)
		case 2:
			m.FinishReason, n, err = consumeString(data)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("Candidate field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// GenerationConfig layout:
//
//	1 temperature (float), 2 top_p (float), 3 top_k (int32),
//	4 max_output_tokens (int32), 5 stop_sequences (repeated string)
func (m *GenerationConfig) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendFloat(b, 1, m.Temperature)
	b = appendFloat(b, 2, m.TopP)
	b = appendInt32(b, 3, m.TopK)
	b = appendInt32(b, 4, m.MaxOutputTokens)
	for _, s := range m.StopSequences {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b, nil
}

func (m *GenerationConfig) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Temperature, n, err = consumeFloat(data)
		case 2:
			m.TopP, n, err = consumeFloat(data)
		case 3:
			var v uint64
			v, n, err = consumeVarint(data)
			m.TopK = int32(int64(v))
		case 4:
			var v uint64
			v, n, err = consumeVarint(data)
			m.MaxOutputTokens = int32(int64(v))
		case 5:
			var s string
			s, n, err = consumeString(data)
			m.StopSequences = append(m.StopSequences, s)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("GenerationConfig field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// UsageMetadata layout:
//
//	1 prompt_token_count (int32), 2 candidates_token_count (int32),
//	3 total_token_count (int32)
func (m *UsageMetadata) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendInt32(b, 1, m.PromptTokenCount)
	b = appendInt32(b, 2, m.CandidatesTokenCount)
	b = appendInt32(b, 3, m.TotalTokenCount)
	return b, nil
}

func (m *UsageMetadata) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			var v uint64
			v, n, err = consumeVarint(data)
			m.PromptTokenCount = int32(int64(v))
		case 2:
			var v uint64
			v, n, err = consumeVarint(data)
			m.CandidatesTokenCount = int32(int64(v))
		case 3:
			var v uint64
			v, n, err = consumeVarint(data)
			m.TotalTokenCount = int32(int64(v))
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("UsageMetadata field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// CreateSessionRequest layout: 1 description (string)
func (m *CreateSessionRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Description)
	return b, nil
}

func (m *CreateSessionRequest) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Description, n, err = consumeString(data)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("CreateSessionRequest field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// CreateSessionResponse layout: 1 session (SimulatorSession)
func (m *CreateSessionResponse) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	if m.Session != nil {
		if b, err = appendMessage(b, 1, m.Session); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *CreateSessionResponse) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Session = &SimulatorSession{}
			n, err = consumeMessage(data, m.Session)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("CreateSessionResponse field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// ListSessionsRequest layout: 1 page_size (int32), 2 page_token (string)
func (m *ListSessionsRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendInt32(b, 1, m.PageSize)
	b = appendString(b, 2, m.PageToken)
	return b, nil
}

func (m *ListSessionsRequest) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			var v uint64
			v, n, err = consumeVarint(data)
			m.PageSize = int32(int64(v))
		case 2:
			m.PageToken, n, err = consumeString(data)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("ListSessionsRequest field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// ListSessionsResponse layout:
//
//	1 sessions (repeated SimulatorSession), 2 next_page_token (string)
func (m *ListSessionsResponse) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	for _, s := range m.Sessions {
		if b, err = appendMessage(b, 1, s); err != nil {
			return nil, err
		}
	}
	b = appendString(b, 2, m.NextPageToken)
	return b, nil
}

func (m *ListSessionsResponse) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			s := &SimulatorSession{}
			n, err = consumeMessage(data, s)
			m.Sessions = append(m.Sessions, s)
		case 2:
			m.NextPageToken, n, err = consumeString(data)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("ListSessionsResponse field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// SubmitRequestRequest layout:
//
//	1 session_id (string), 2 turn_id (string), 3 agent_name (string),
//	4 request (GenericLlmRequest)
func (m *SubmitRequestRequest) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	b = appendString(b, 1, m.SessionId)
	b = appendString(b, 2, m.TurnId)
	b = appendString(b, 3, m.AgentName)
	if m.Request != nil {
		if b, err = appendMessage(b, 4, m.Request); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *SubmitRequestRequest) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SessionId, n, err = consumeString(data)
		case 2:
			m.TurnId, n, err = consumeString(data)
		case 3:
			m.AgentName, n, err = consumeString(data)
		case 4:
			m.Request = &GenericLlmRequest{}
			n, err = consumeMessage(data, m.Request)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("SubmitRequestRequest field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// SubmitRequestResponse layout: 1 event_id (string)
func (m *SubmitRequestResponse) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.EventId)
	return b, nil
}

func (m *SubmitRequestResponse) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.EventId, n, err = consumeString(data)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("SubmitRequestResponse field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// SubmitDecisionRequest layout:
//
//	1 session_id (string), 2 turn_id (string), 3 response (GenericLlmResponse)
func (m *SubmitDecisionRequest) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	b = appendString(b, 1, m.SessionId)
	b = appendString(b, 2, m.TurnId)
	if m.Response != nil {
		if b, err = appendMessage(b, 3, m.Response); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *SubmitDecisionRequest) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SessionId, n, err = consumeString(data)
		case 2:
			m.TurnId, n, err = consumeString(data)
		case 3:
			m.Response = &GenericLlmResponse{}
			n, err = consumeMessage(data, m.Response)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("SubmitDecisionRequest field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// SubmitDecisionResponse layout: 1 event_id (string)
func (m *SubmitDecisionResponse) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.EventId)
	return b, nil
}

func (m *SubmitDecisionResponse) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.EventId, n, err = consumeString(data)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("SubmitDecisionResponse field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// SubscribeRequest layout: 1 session_id (string), 2 client_id (string)
func (m *SubscribeRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.SessionId)
	b = appendString(b, 2, m.ClientId)
	return b, nil
}

func (m *SubscribeRequest) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SessionId, n, err = consumeString(data)
		case 2:
			m.ClientId, n, err = consumeString(data)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("SubscribeRequest field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}

// SubscribeResponse layout: 1 event (SessionEvent)
func (m *SubscribeResponse) MarshalWire() ([]byte, error) {
	var b []byte
	var err error
	if m.Event != nil {
		if b, err = appendMessage(b, 1, m.Event); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *SubscribeResponse) UnmarshalWire(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Event = &SessionEvent{}
			n, err = consumeMessage(data, m.Event)
		default:
			n, err = skipField(data, num, typ)
		}
		if err != nil {
			return fmt.Errorf("SubscribeResponse field %d: %w", num, err)
		}
		data = data[n:]
	}
	return nil
}
