// ABOUTME: Round-trip tests for the hand-maintained adksim.v1 wire encoding
// ABOUTME: Covers oneof discriminants, nested well-known types, and unknown-field skipping

package simv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestSessionEvent_RequestRoundTrip(t *testing.T) {
	args, err := structpb.NewStruct(map[string]any{"a": 1.0, "b": "two"})
	require.NoError(t, err)

	ev := &SessionEvent{
		EventId:   "evt-1",
		SessionId: "sess-1",
		Timestamp: timestamppb.New(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)),
		TurnId:    "turn-1",
		AgentName: "calc",
		Payload: &LlmRequestPayload{LlmRequest: &GenericLlmRequest{
			Model: "gemini-2.0-flash",
			Contents: []*Content{
				{Role: "user", Parts: []*Part{NewTextPart("what is 6*7?")}},
				{Role: "model", Parts: []*Part{{Data: &PartFunctionCall{FunctionCall: &FunctionCall{Name: "multiply", Args: args}}}}},
			},
			SystemInstruction: &Content{Role: "system", Parts: []*Part{NewTextPart("be terse")}},
			GenerationConfig: &GenerationConfig{
				Temperature:     0.7,
				TopP:            0.9,
				TopK:            40,
				MaxOutputTokens: 1024,
				StopSequences:   []string{"END", "STOP"},
			},
		}},
	}

	data, err := ev.MarshalWire()
	require.NoError(t, err)

	got := &SessionEvent{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, "evt-1", got.EventId)
	assert.Equal(t, "sess-1", got.SessionId)
	assert.Equal(t, "turn-1", got.TurnId)
	assert.Equal(t, "calc", got.AgentName)
	assert.True(t, ev.Timestamp.AsTime().Equal(got.Timestamp.AsTime()))
	assert.Equal(t, "llm_request", got.PayloadType())

	req := got.GetLlmRequest()
	require.NotNil(t, req)
	assert.Equal(t, "gemini-2.0-flash", req.Model)
	require.Len(t, req.Contents, 2)
	assert.Equal(t, "what is 6*7?", req.Contents[0].Parts[0].GetText())
	fc := req.Contents[1].Parts[0].GetFunctionCall()
	require.NotNil(t, fc)
	assert.Equal(t, "multiply", fc.Name)
	assert.Equal(t, "two", fc.Args.Fields["b"].GetStringValue())
	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "be terse", req.SystemInstruction.Parts[0].GetText())
	require.NotNil(t, req.GenerationConfig)
	assert.InDelta(t, 0.7, req.GenerationConfig.Temperature, 1e-6)
	assert.Equal(t, int32(40), req.GenerationConfig.TopK)
	assert.Equal(t, []string{"END", "STOP"}, req.GenerationConfig.StopSequences)
}

func TestSessionEvent_ResponseRoundTrip(t *testing.T) {
	ev := &SessionEvent{
		EventId:   "evt-2",
		SessionId: "sess-1",
		Timestamp: timestamppb.Now(),
		TurnId:    "turn-1",
		Payload: &LlmResponsePayload{LlmResponse: &GenericLlmResponse{
			Candidates: []*Candidate{{
				Content:      &Content{Role: "model", Parts: []*Part{NewTextPart("42")}},
				FinishReason: "STOP",
			}},
			UsageMetadata: &UsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 1, TotalTokenCount: 13},
		}},
	}

	data, err := ev.MarshalWire()
	require.NoError(t, err)

	got := &SessionEvent{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, "llm_response", got.PayloadType())
	assert.Empty(t, got.AgentName, "decision events carry no agent attribution")
	resp := got.GetLlmResponse()
	require.NotNil(t, resp)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "42", resp.Candidates[0].Content.Parts[0].GetText())
	assert.Equal(t, "STOP", resp.Candidates[0].FinishReason)
	assert.Equal(t, int32(13), resp.UsageMetadata.TotalTokenCount)
	assert.Nil(t, got.GetLlmRequest())
	assert.Nil(t, got.GetHistoryComplete())
}

func TestSessionEvent_HistoryCompleteRoundTrip(t *testing.T) {
	ev := &SessionEvent{
		SessionId: "sess-1",
		Timestamp: timestamppb.Now(),
		Payload:   &HistoryCompletePayload{HistoryComplete: &HistoryComplete{EventCount: 7}},
	}

	data, err := ev.MarshalWire()
	require.NoError(t, err)

	got := &SessionEvent{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, "history_complete", got.PayloadType())
	require.NotNil(t, got.GetHistoryComplete())
	assert.Equal(t, int32(7), got.GetHistoryComplete().EventCount)
}

func TestPart_EmptyTextOneofSurvivesRoundTrip(t *testing.T) {
	// A set-but-empty oneof member must not decay to "unset" on the wire.
	p := NewTextPart("")
	data, err := p.MarshalWire()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got := &Part{}
	require.NoError(t, got.UnmarshalWire(data))
	_, ok := got.Data.(*PartText)
	assert.True(t, ok, "text variant should be preserved for empty strings")
}

func TestFunctionResponse_RoundTrip(t *testing.T) {
	resp, err := structpb.NewStruct(map[string]any{"result": 42.0})
	require.NoError(t, err)

	fr := &FunctionResponse{Name: "multiply", Response: resp}
	data, err := fr.MarshalWire()
	require.NoError(t, err)

	got := &FunctionResponse{}
	require.NoError(t, got.UnmarshalWire(data))
	assert.Equal(t, "multiply", got.Name)
	assert.Equal(t, 42.0, got.Response.Fields["result"].GetNumberValue())
}

func TestSimulatorSession_RoundTrip(t *testing.T) {
	s := &SimulatorSession{
		Id:          "sess-9",
		CreatedAt:   timestamppb.New(time.Unix(1_760_000_000, 0)),
		Description: "debugging the calc agent",
		Status:      SessionStatusCompleted,
	}

	data, err := s.MarshalWire()
	require.NoError(t, err)

	got := &SimulatorSession{}
	require.NoError(t, got.UnmarshalWire(data))
	assert.Equal(t, s.Id, got.Id)
	assert.Equal(t, s.Description, got.Description)
	assert.Equal(t, SessionStatusCompleted, got.Status)
	assert.Equal(t, int64(1_760_000_000), got.CreatedAt.AsTime().Unix())
}

func TestUnmarshal_SkipsUnknownFields(t *testing.T) {
	s := &SimulatorSession{Id: "sess-1", Status: SessionStatusActive}
	data, err := s.MarshalWire()
	require.NoError(t, err)

	// Append a field number this version does not know about.
	data = protowire.AppendTag(data, 99, protowire.BytesType)
	data = protowire.AppendString(data, "from the future")

	got := &SimulatorSession{}
	require.NoError(t, got.UnmarshalWire(data))
	assert.Equal(t, "sess-1", got.Id)
	assert.Equal(t, SessionStatusActive, got.Status)
}

func TestSessionStatus_StringMapping(t *testing.T) {
	for _, st := range []SessionStatus{SessionStatusUnspecified, SessionStatusActive, SessionStatusCompleted, SessionStatusCancelled} {
		assert.Equal(t, st, SessionStatusFromString(st.String()))
	}
	assert.Equal(t, SessionStatusUnspecified, SessionStatusFromString("bogus"))
}

func TestCodec_RejectsForeignTypes(t *testing.T) {
	c := Codec()
	_, err := c.Marshal("not a message")
	assert.Error(t, err)
	assert.Error(t, c.Unmarshal(nil, "not a message"))
}

func TestCodec_RoundTripsEnvelopes(t *testing.T) {
	c := Codec()
	in := &SubmitRequestRequest{
		SessionId: "sess-1",
		TurnId:    "turn-1",
		AgentName: "calc",
		Request:   &GenericLlmRequest{Model: "gemini-2.0-flash"},
	}
	data, err := c.Marshal(in)
	require.NoError(t, err)

	out := &SubmitRequestRequest{}
	require.NoError(t, c.Unmarshal(data, out))
	assert.Equal(t, in.SessionId, out.SessionId)
	assert.Equal(t, in.TurnId, out.TurnId)
	assert.Equal(t, "gemini-2.0-flash", out.Request.Model)
}
