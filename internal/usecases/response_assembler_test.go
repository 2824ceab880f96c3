package usecases

import (
	"math/rand/v2"
	"strings"
	"testing"

	"mindcare/internal/entities"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

type fixedRandom int

func (f fixedRandom) IntN(int) int { return int(f) }

func TestResponseAssembler_Assemble(t *testing.T) {
	a := NewResponseAssembler(nil)
	result := CompletionResult{Text: "I'm here for you.", Service: entities.ServiceGemini}

	plain := a.Assemble(result, false)
	assert.Equal(t, "I'm here for you.", plain.Response)
	assert.False(t, plain.HasCrisisContent)
	assert.Equal(t, entities.ServiceGemini, plain.Service)

	flagged := a.Assemble(result, true)
	assert.Equal(t, "I'm here for you."+CrisisResourcesBlock, flagged.Response)
	assert.True(t, flagged.HasCrisisContent)
	assert.Contains(t, flagged.Response, "988")
	assert.Contains(t, flagged.Response, "741741")
}

func TestResponseAssembler_FallbackKeepsCrisisBlock(t *testing.T) {
	a := NewResponseAssembler(nil)
	res := a.Assemble(CompletionResult{Text: MessageServicesUnavailable, Service: entities.ServiceFallback}, true)

	assert.True(t, strings.HasPrefix(res.Response, MessageServicesUnavailable))
	assert.True(t, strings.HasSuffix(res.Response, CrisisResourcesBlock))
	assert.Equal(t, entities.ServiceFallback, res.Service)
}

func TestResponseAssembler_Fault(t *testing.T) {
	for i := range FaultMessages {
		a := NewResponseAssembler(fixedRandom(i))
		res := a.Fault()

		assert.Equal(t, FaultMessages[i]+FaultFooter, res.Response)
		assert.False(t, res.HasCrisisContent)
		assert.Equal(t, entities.ServiceFallback, res.Service)
	}
}

func TestResponseAssembler_FaultSeeded(t *testing.T) {
	a := NewResponseAssembler(rand.New(rand.NewPCG(1, 2)))
	b := NewResponseAssembler(rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Fault(), b.Fault())
	}
}

func TestResponseAssembler_AssembleDeterministic(t *testing.T) {
	a := NewResponseAssembler(nil)
	services := []entities.Service{entities.ServiceGemini, entities.ServiceOpenAI, entities.ServiceFallback}

	properties := gopter.NewProperties(nil)
	properties.Property("equal inputs give identical responses", prop.ForAll(
		func(text string, idx int, crisis bool) bool {
			result := CompletionResult{Text: text, Service: services[idx]}
			return a.Assemble(result, crisis) == a.Assemble(result, crisis)
		},
		gen.AnyString(),
		gen.IntRange(0, len(services)-1),
		gen.Bool(),
	))
	properties.Property("crisis block appended only when flagged", prop.ForAll(
		func(text string, crisis bool) bool {
			res := a.Assemble(CompletionResult{Text: text, Service: entities.ServiceGemini}, crisis)
			if crisis {
				return res.Response == text+CrisisResourcesBlock && res.HasCrisisContent
			}
			return res.Response == text && !res.HasCrisisContent
		},
		gen.AnyString(),
		gen.Bool(),
	))
	properties.TestingRun(t)
}
