// ABOUTME: Hand-maintained message types for the adksim.v1 wire contract
// ABOUTME: Field numbers live in wire.go; keep both in sync when evolving the protocol

// Package simv1 defines the adksim.v1 protocol spoken between the simulator
// server, the intercepting plugin, and browser clients.
//
// The package is maintained by hand rather than generated: messages are plain
// structs, oneof payloads are tagged unions, and (un)marshaling goes through
// protowire in wire.go. The byte encoding is standard protobuf, so blobs and
// gRPC-Web frames stay compatible with any generated client.
package simv1

import (
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// SessionStatus is the lifecycle state of a simulator session.
type SessionStatus int32

const (
	SessionStatusUnspecified SessionStatus = 0
	SessionStatusActive      SessionStatus = 1
	SessionStatusCompleted   SessionStatus = 2
	SessionStatusCancelled   SessionStatus = 3
)

// String returns the protocol name of the status, used as the promoted
// status column in the store.
func (s SessionStatus) String() string {
	switch s {
	case SessionStatusActive:
		return "ACTIVE"
	case SessionStatusCompleted:
		return "COMPLETED"
	case SessionStatusCancelled:
		return "CANCELLED"
	default:
		return "UNSPECIFIED"
	}
}

// SessionStatusFromString maps a status column value back to the enum.
// Unknown values map to SessionStatusUnspecified.
func SessionStatusFromString(s string) SessionStatus {
	switch s {
	case "ACTIVE":
		return SessionStatusActive
	case "COMPLETED":
		return SessionStatusCompleted
	case "CANCELLED":
		return SessionStatusCancelled
	default:
		return SessionStatusUnspecified
	}
}

// SimulatorSession is one simulation run: a container for events and the
// unit of subscription.
type SimulatorSession struct {
	Id          string
	CreatedAt   *timestamppb.Timestamp
	Description string
	Status      SessionStatus
}

// SessionEvent is one entry in a session's append-only event log.
//
// Payload is a oneof: exactly one of LlmRequest, LlmResponse, or
// HistoryComplete. HistoryComplete events are synthetic stream markers and
// are never persisted.
type SessionEvent struct {
	EventId   string
	SessionId string
	Timestamp *timestamppb.Timestamp
	TurnId    string
	AgentName string
	Payload   Payload
}

// Payload is the tagged union carried by a SessionEvent.
type Payload interface{ isPayload() }

// LlmRequestPayload wraps an intercepted model request.
type LlmRequestPayload struct {
	LlmRequest *GenericLlmRequest
}

// LlmResponsePayload wraps a human decision.
type LlmResponsePayload struct {
	LlmResponse *GenericLlmResponse
}

// HistoryCompletePayload marks the boundary between replayed history and
// live events on a subscription.
type HistoryCompletePayload struct {
	HistoryComplete *HistoryComplete
}

func (*LlmRequestPayload) isPayload()      {}
func (*LlmResponsePayload) isPayload()     {}
func (*HistoryCompletePayload) isPayload() {}

// GetLlmRequest returns the request payload, or nil for other variants.
func (e *SessionEvent) GetLlmRequest() *GenericLlmRequest {
	if p, ok := e.Payload.(*LlmRequestPayload); ok {
		return p.LlmRequest
	}
	return nil
}

// GetLlmResponse returns the response payload, or nil for other variants.
func (e *SessionEvent) GetLlmResponse() *GenericLlmResponse {
	if p, ok := e.Payload.(*LlmResponsePayload); ok {
		return p.LlmResponse
	}
	return nil
}

// GetHistoryComplete returns the marker payload, or nil for other variants.
func (e *SessionEvent) GetHistoryComplete() *HistoryComplete {
	if p, ok := e.Payload.(*HistoryCompletePayload); ok {
		return p.HistoryComplete
	}
	return nil
}

// PayloadType returns the promoted payload discriminant name, matching the
// store's payload_type column ("llm_request", "llm_response",
// "history_complete"); empty for an unset payload.
func (e *SessionEvent) PayloadType() string {
	switch e.Payload.(type) {
	case *LlmRequestPayload:
		return "llm_request"
	case *LlmResponsePayload:
		return "llm_response"
	case *HistoryCompletePayload:
		return "history_complete"
	default:
		return ""
	}
}

// HistoryComplete is the synthetic marker emitted once per subscription
// after history replay. EventCount is the number of replayed events.
type HistoryComplete struct {
	EventCount int32
}

// GenericLlmRequest is a framework-neutral model request. The broker treats
// it as opaque; only the framework adapter on the agent side interprets it.
type GenericLlmRequest struct {
	Model             string
	Contents          []*Content
	SystemInstruction *Content
	GenerationConfig  *GenerationConfig
}

// GenericLlmResponse is a framework-neutral model response.
type GenericLlmResponse struct {
	Candidates    []*Candidate
	UsageMetadata *UsageMetadata
}

// Content is one conversational message: a role plus ordered parts.
type Content struct {
	Role  string
	Parts []*Part
}

// Part is one piece of content. Data is a oneof: text, a function call, or
// a function response.
type Part struct {
	Data PartData
}

// PartData is the tagged union carried by a Part.
type PartData interface{ isPartData() }

type PartText struct {
	Text string
}

type PartFunctionCall struct {
	FunctionCall *FunctionCall
}

type PartFunctionResponse struct {
	FunctionResponse *FunctionResponse
}

func (*PartText) isPartData()             {}
func (*PartFunctionCall) isPartData()     {}
func (*PartFunctionResponse) isPartData() {}

// GetText returns the text of a text part, or "" for other variants.
func (p *Part) GetText() string {
	if d, ok := p.Data.(*PartText); ok {
		return d.Text
	}
	return ""
}

// GetFunctionCall returns the function call, or nil for other variants.
func (p *Part) GetFunctionCall() *FunctionCall {
	if d, ok := p.Data.(*PartFunctionCall); ok {
		return d.FunctionCall
	}
	return nil
}

// GetFunctionResponse returns the function response, or nil for other variants.
func (p *Part) GetFunctionResponse() *FunctionResponse {
	if d, ok := p.Data.(*PartFunctionResponse); ok {
		return d.FunctionResponse
	}
	return nil
}

// NewTextPart builds a text part.
func NewTextPart(text string) *Part {
	return &Part{Data: &PartText{Text: text}}
}

// FunctionCall is a tool invocation requested by the model/human.
type FunctionCall struct {
	Name string
	Args *structpb.Struct
}

// FunctionResponse is a tool result fed back into the conversation.
type FunctionResponse struct {
	Name     string
	Response *structpb.Struct
}

// Candidate is one generated completion.
type Candidate struct {
	Content      *Content
	FinishReason string
}

// GenerationConfig carries the sampling parameters of a request.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
	StopSequences   []string
}

// UsageMetadata carries token accounting for a response.
type UsageMetadata struct {
	PromptTokenCount     int32
	CandidatesTokenCount int32
	TotalTokenCount      int32
}

// TextResponse builds a single-candidate response with one text part, the
// common shape for human decisions typed into a UI.
func TextResponse(text string) *GenericLlmResponse {
	return &GenericLlmResponse{
		Candidates: []*Candidate{{
			Content: &Content{
				Role:  "model",
				Parts: []*Part{NewTextPart(text)},
			},
		}},
	}
}

// Request/response envelopes for the SimulatorService RPCs.

type CreateSessionRequest struct {
	Description string
}

type CreateSessionResponse struct {
	Session *SimulatorSession
}

type ListSessionsRequest struct {
	PageSize  int32
	PageToken string
}

type ListSessionsResponse struct {
	Sessions      []*SimulatorSession
	NextPageToken string
}

type SubmitRequestRequest struct {
	SessionId string
	TurnId    string
	AgentName string
	Request   *GenericLlmRequest
}

type SubmitRequestResponse struct {
	EventId string
}

type SubmitDecisionRequest struct {
	SessionId string
	TurnId    string
	Response  *GenericLlmResponse
}

type SubmitDecisionResponse struct {
	EventId string
}

type SubscribeRequest struct {
	SessionId string
	ClientId  string
}

type SubscribeResponse struct {
	Event *SessionEvent
}
