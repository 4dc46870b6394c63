package parser_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coverscan/internal/appform"
	"coverscan/internal/domain"
	"coverscan/internal/parser"
	"coverscan/internal/port"
	"coverscan/mocks"
)

// fallbackRecord tags the record with the provider that produced it so
// tests can tell which parser won.
func fallbackRecord(provider string) *appform.Record {
	rec := appform.NewRecord()
	rec.Applicant.FirstName = appform.NewFieldWith(provider, appform.ConfidenceHigh)
	return rec
}

func fallbackInput() port.PageInput {
	return port.PageInput{FileBytes: []byte("test"), ContentType: "application/pdf", FormType: domain.FormTypeAuto}
}

func newMockProvider(name string) *mocks.MockPageParser {
	p := new(mocks.MockPageParser)
	p.On("Name").Return(name).Maybe()
	return p
}

func TestFallbackParser_FirstSucceeds(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	input := fallbackInput()
	p1.On("ParsePage", mock.Anything, input).Return(fallbackRecord("claude"), nil)

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	rec, err := fp.ParsePage(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, "claude", *rec.Applicant.FirstName.Value)
	p2.AssertNotCalled(t, "ParsePage", mock.Anything, mock.Anything)
}

func TestFallbackParser_FirstFails_SecondSucceeds(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	input := fallbackInput()
	p1.On("ParsePage", mock.Anything, input).Return(nil, errors.New("generic error"))
	p2.On("ParsePage", mock.Anything, input).Return(fallbackRecord("openai"), nil)

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	rec, err := fp.ParsePage(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, "openai", *rec.Applicant.FirstName.Value)
}

func TestFallbackParser_FirstRateLimited_SecondSucceeds(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	input := fallbackInput()
	rlErr := parser.NewRateLimitError("claude", errors.New("429"), 60)
	p1.On("ParsePage", mock.Anything, input).Return(nil, rlErr)
	p2.On("ParsePage", mock.Anything, input).Return(fallbackRecord("openai"), nil)

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	rec, err := fp.ParsePage(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, "openai", *rec.Applicant.FirstName.Value)
}

func TestFallbackParser_AllRateLimited(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	input := fallbackInput()
	p1.On("ParsePage", mock.Anything, input).Return(nil, parser.NewRateLimitError("claude", errors.New("429"), 60))
	p2.On("ParsePage", mock.Anything, input).Return(nil, parser.NewRateLimitError("openai", errors.New("429"), 30))

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	rec, err := fp.ParsePage(context.Background(), input)

	assert.Nil(t, rec)
	assert.Error(t, err)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackParser_AllFail_NonRateLimit(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	input := fallbackInput()
	p1.On("ParsePage", mock.Anything, input).Return(nil, errors.New("error 1"))
	p2.On("ParsePage", mock.Anything, input).Return(nil, errors.New("error 2"))

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	rec, err := fp.ParsePage(context.Background(), input)

	assert.Nil(t, rec)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")

	var rlErr *parser.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackParser_CircuitAutoCloses(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	input := fallbackInput()

	// First call: p1 rate limited with 1s retry, p2 succeeds
	p1.On("ParsePage", mock.Anything, input).Return(nil, parser.NewRateLimitError("claude", errors.New("429"), 1)).Once()
	p2.On("ParsePage", mock.Anything, input).Return(fallbackRecord("openai"), nil).Once()

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	rec, err := fp.ParsePage(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openai", *rec.Applicant.FirstName.Value)

	// Wait for circuit to auto-close
	time.Sleep(1100 * time.Millisecond)

	// Second call: p1 should be retried and succeed
	p1.On("ParsePage", mock.Anything, input).Return(fallbackRecord("claude"), nil).Once()

	rec, err = fp.ParsePage(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "claude", *rec.Applicant.FirstName.Value)
}

func TestFallbackParser_SkipsOpenCircuit(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	input := fallbackInput()

	// First call: p1 rate limited with 60s, p2 succeeds
	p1.On("ParsePage", mock.Anything, input).Return(nil, parser.NewRateLimitError("claude", errors.New("429"), 60)).Once()
	p2.On("ParsePage", mock.Anything, input).Return(fallbackRecord("openai"), nil)

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	rec, err := fp.ParsePage(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openai", *rec.Applicant.FirstName.Value)

	// Second call immediately: p1 should be skipped (circuit still open)
	rec, err = fp.ParsePage(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openai", *rec.Applicant.FirstName.Value)

	// p1 should have been called only once total
	p1.AssertNumberOfCalls(t, "ParsePage", 1)
}

func TestFallbackParser_SingleProvider(t *testing.T) {
	p1 := newMockProvider("claude")

	input := fallbackInput()
	p1.On("ParsePage", mock.Anything, input).Return(fallbackRecord("claude"), nil)

	fp := parser.NewFallbackParser([]port.PageParser{p1})

	rec, err := fp.ParsePage(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, "claude", *rec.Applicant.FirstName.Value)
}

func TestFallbackParser_Name(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	assert.Equal(t, "claude+openai", fp.Name())
}

func TestFallbackParser_ConcurrentSafety(t *testing.T) {
	p1 := newMockProvider("claude")
	p2 := newMockProvider("openai")

	input := fallbackInput()
	p1.On("ParsePage", mock.Anything, input).Return(nil, parser.NewRateLimitError("claude", errors.New("429"), 5)).Maybe()
	p2.On("ParsePage", mock.Anything, input).Return(fallbackRecord("openai"), nil).Maybe()

	fp := parser.NewFallbackParser([]port.PageParser{p1, p2})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := fp.ParsePage(context.Background(), input)
			assert.NoError(t, err)
			assert.NotNil(t, rec)
		}()
	}
	wg.Wait()
}
