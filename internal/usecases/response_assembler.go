package usecases

import (
	"math/rand/v2"
	"sync"

	"mindcare/internal/entities"
)

// CrisisResourcesBlock is appended to any reply whose message matched the crisis lexicon.
const CrisisResourcesBlock = "\n\n🚨 I'm concerned about your safety. Please reach out for immediate help:\n" +
	"• Call 988 (Suicide & Crisis Lifeline)\n" +
	"• Text HOME to 741741 (Crisis Text Line)\n" +
	"• Visit your nearest emergency room\n" +
	"• Contact campus counseling services"

// FaultFooter is appended to every reply produced after an unexpected fault.
const FaultFooter = "\n\nIf you're in crisis, please call 988 (Suicide & Crisis Lifeline) or visit your campus counseling center. You can also try chatting again in a moment."

// FaultMessages is the pool Fault picks from.
var FaultMessages = []string{
	"I understand you're reaching out for support, and I want you to know that's a brave step. While I'm having technical difficulties right now, please know that your feelings are valid and you're not alone.",
	"I'm sorry I'm having connection issues right now. In the meantime, remember that it's normal to feel overwhelmed sometimes, especially as a student. Taking deep breaths and reaching out for support are positive steps.",
	"I appreciate you sharing with me, even though I'm experiencing technical problems. Remember that seeking help is a sign of strength, not weakness. You deserve support and care.",
}

// RandomSource picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// ResponseAssembler builds the final ChatResponse.
type ResponseAssembler struct {
	mu  sync.Mutex
	rnd RandomSource
}

// NewResponseAssembler uses rnd for Fault; nil selects the process-wide generator.
func NewResponseAssembler(rnd RandomSource) *ResponseAssembler {
	if rnd == nil {
		rnd = globalRandom{}
	}
	return &ResponseAssembler{rnd: rnd}
}

// Assemble is deterministic: equal inputs give byte-identical output.
func (a *ResponseAssembler) Assemble(result CompletionResult, crisis bool) entities.ChatResponse {
	text := result.Text
	if crisis {
		text += CrisisResourcesBlock
	}
	return entities.ChatResponse{
		Response:         text,
		HasCrisisContent: crisis,
		Service:          result.Service,
	}
}

// Fault is the reply for an unexpected internal error. It is the only
// non-deterministic output of the pipeline.
func (a *ResponseAssembler) Fault() entities.ChatResponse {
	a.mu.Lock()
	i := a.rnd.IntN(len(FaultMessages))
	a.mu.Unlock()

	return entities.ChatResponse{
		Response:         FaultMessages[i] + FaultFooter,
		HasCrisisContent: false,
		Service:          entities.ServiceFallback,
	}
}
