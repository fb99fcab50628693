package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eiffelgen/internal/testutil"
)

func TestExtract_SimpleMethod(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

type Counter struct{ a int }

func (c *Counter) Add(delta int) {
	c.a += delta
}
`)

	sig, err := Extract(decl)
	require.NoError(t, err)

	assert.Equal(t, "Add", sig.Name)
	assert.Equal(t, "c", sig.Receiver.Name)
	assert.Equal(t, "Counter", sig.ReceiverTypeName)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, "delta", sig.Params[0].Name)
	assert.False(t, sig.Params[0].Variadic)
	assert.Equal(t, 0, sig.Results)
}

func TestExtract_MultiNameFieldsAndResults(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (s *Store) Put(key, value string, opts Options) (int, error) {
	return 0, nil
}
`)

	sig, err := Extract(decl)
	require.NoError(t, err)

	require.Len(t, sig.Params, 3)
	assert.Equal(t, "key", sig.Params[0].Name)
	assert.Equal(t, "value", sig.Params[1].Name)
	assert.Equal(t, "opts", sig.Params[2].Name)
	assert.Equal(t, 2, sig.Results)
}

func TestExtract_NamedResultsAreCounted(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (s *Store) Stats() (hits, misses int) {
	return
}
`)

	sig, err := Extract(decl)
	require.NoError(t, err)
	assert.Equal(t, 2, sig.Results)
}

func TestExtract_VariadicParameter(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (l *Log) Append(prefix string, parts ...string) {
}
`)

	sig, err := Extract(decl)
	require.NoError(t, err)

	require.Len(t, sig.Params, 2)
	assert.False(t, sig.Params[0].Variadic)
	assert.True(t, sig.Params[1].Variadic)
}

func TestExtract_GenericReceiver(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (s *Stack[T]) Push(v T) {
	s.items = append(s.items, v)
}
`)

	sig, err := Extract(decl)
	require.NoError(t, err)
	assert.Equal(t, "Stack", sig.ReceiverTypeName)
}

func TestExtract_FreeFunctionRejected(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func Add(a, b int) int { return a + b }
`)

	_, err := Extract(decl)
	require.Error(t, err)

	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrMissingReceiver, ee.Code)
	assert.Equal(t, "Add", ee.Method)
}

func TestExtract_BlankReceiverRejected(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (_ *Counter) Reset() {}
`)

	_, err := Extract(decl)
	require.Error(t, err)

	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrUnnamedReceiver, ee.Code)
}

func TestExtract_UnnamedReceiverRejected(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (*Counter) Reset() {}
`)

	_, err := Extract(decl)
	require.Error(t, err)

	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrUnnamedReceiver, ee.Code)
}

func TestExtract_UnnamedParameterRejected(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (c *Counter) Observe(int) {}
`)

	_, err := Extract(decl)
	require.Error(t, err)

	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrUnsupportedParam, ee.Code)
}

func TestExtract_BlankParameterRejected(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (c *Counter) Observe(_ int) {}
`)

	_, err := Extract(decl)
	require.Error(t, err)

	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrUnsupportedParam, ee.Code)
}

func TestExtract_MissingBodyRejected(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (c *Counter) Native()
`)

	_, err := Extract(decl)
	require.Error(t, err)

	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrMissingBody, ee.Code)
}

func TestExtract_ReservedSuffixRejected(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (c *Counter) Add_noInvariant(delta int) {}
`)

	_, err := Extract(decl)
	require.Error(t, err)

	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrReservedSuffix, ee.Code)
}

func TestExtract_UsedNames(t *testing.T) {
	decl := testutil.ParseMethod(t, `package p

func (c *Counter) Add(delta int) {}
`)

	sig, err := Extract(decl)
	require.NoError(t, err)

	used := sig.UsedNames()
	assert.True(t, used["c"])
	assert.True(t, used["delta"])
	assert.False(t, used["ret0"])
}
