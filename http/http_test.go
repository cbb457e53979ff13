package http

import (
	"bytes"
	"io"
	"math"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	c "github.com/d0ngw/counters/common"
	"github.com/d0ngw/counters/counter"
	"github.com/d0ngw/counters/service"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	HTTPStatus int                 `json:"http_status"`
	Error      *ErrorBody          `json:"error"`
	Data       jsoniter.RawMessage `json:"data"`
}

func newTestService(t *testing.T) *Service {
	svc, _ := newTestCounters(t)
	return svc
}

func newTestCounters(t *testing.T) (*Service, *service.Counters) {
	store, err := counter.New(counter.ConcurrentAtomic)
	require.NoError(t, err)

	rules := service.DefaultValidateRuleConfig()
	require.NoError(t, rules.Parse())
	validator := c.NewRuleValidateService(&c.AppConfig{ValidateRuleConfig: rules})
	counters := service.NewCounters(store, validator)
	require.True(t, c.NewServices([]c.Service{validator, counters}, true).Init())
	t.Cleanup(func() { counters.Stop() })

	conf := NewConfig("127.0.0.1:0")
	require.NoError(t, conf.RegMiddleware(AccessLog))
	require.NoError(t, conf.RegMiddleware(Recovery))
	require.NoError(t, conf.RegController(NewCountersController(counters)))
	require.NoError(t, conf.RegHandleFunc("GET /panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	svc := NewService(conf)
	require.True(t, c.ServiceInit(svc))
	return svc, counters
}

func do(t *testing.T, svc *Service, method, target, body string) (*httptest.ResponseRecorder, *testEnvelope) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	r := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	svc.Handler().ServeHTTP(w, r)

	envelope := &testEnvelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), envelope), w.Body.String())
	assert.Equal(t, w.Code, envelope.HTTPStatus)
	assert.Equal(t, ContentTypeJSON, w.Header().Get("Content-Type"))
	return w, envelope
}

func decodeCounter(t *testing.T, envelope *testEnvelope) CounterBody {
	var body CounterBody
	require.NoError(t, json.Unmarshal(envelope.Data, &body))
	return body
}

func TestCountersAPI(t *testing.T) {
	svc := newTestService(t)

	w, env := do(t, svc, http.MethodPost, "/api/v1/counters", `{"name":"a","value":1}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.Error)
	assert.Equal(t, CounterBody{Name: "a", Value: 1}, decodeCounter(t, env))

	w, env = do(t, svc, http.MethodPost, "/api/v1/counters", `{"name":"a","value":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Counter with name 'a' already exists.", env.Error.Message)

	w, _ = do(t, svc, http.MethodPost, "/api/v1/counters", `{"name":"","value":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, svc, http.MethodPost, "/api/v1/counters", `{"value":2}`)
	assert.Equal(t, http.StatusOK, w.Code)
	generated := decodeCounter(t, env)
	assert.Len(t, generated.Name, 36)
	assert.Equal(t, int64(2), generated.Value)

	w, _ = do(t, svc, http.MethodPost, "/api/v1/counters", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, svc, http.MethodPut, "/api/v1/counters/b", `{"value":5}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CounterBody{Name: "b", Value: 5}, decodeCounter(t, env))

	_, env = do(t, svc, http.MethodPost, "/api/v1/counters/b", "")
	assert.Equal(t, int64(6), decodeCounter(t, env).Value)

	_, env = do(t, svc, http.MethodGet, "/api/v1/counters/b", "")
	assert.Equal(t, int64(6), decodeCounter(t, env).Value)

	w, env = do(t, svc, http.MethodGet, "/api/v1/counters/x", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Counter with name 'x' does not exist.", env.Error.Message)

	w, _ = do(t, svc, http.MethodPost, "/api/v1/counters/x", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, env = do(t, svc, http.MethodGet, "/api/v1/counters/extension/values-sum", "")
	var sum SumBody
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, int64(1+2+6), sum.Sum.Int64())

	_, env = do(t, svc, http.MethodGet, "/api/v1/counters/extension/names-list", "")
	var names NamesBody
	require.NoError(t, json.Unmarshal(env.Data, &names))
	assert.ElementsMatch(t, []string{"a", "b", generated.Name}, names.Names)

	w, env = do(t, svc, http.MethodDelete, "/api/v1/counters/b", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(6), decodeCounter(t, env).Value)
	w, _ = do(t, svc, http.MethodDelete, "/api/v1/counters/b", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCountersAPIOverflowAndSum(t *testing.T) {
	svc := newTestService(t)

	do(t, svc, http.MethodPut, "/api/v1/counters/m1", `{"value":9223372036854775807}`)
	do(t, svc, http.MethodPut, "/api/v1/counters/m2", `{"value":9223372036854775807}`)

	w, env := do(t, svc, http.MethodPost, "/api/v1/counters/m1", "")
	assert.Equal(t, http.StatusInsufficientStorage, w.Code)
	assert.Equal(t, "Counter 'm1' can not be incremented without overflowing.", env.Error.Message)

	_, env = do(t, svc, http.MethodGet, "/api/v1/counters/extension/values-sum", "")
	var sum SumBody
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	expect := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(2))
	assert.Equal(t, 0, expect.Cmp(sum.Sum))
	assert.Contains(t, string(env.Data), expect.String())
}

func TestUnknownRouteAndPanic(t *testing.T) {
	svc := newTestService(t)

	w, env := do(t, svc, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, env.Error.Message, "/nope")

	w, _ = do(t, svc, http.MethodPatch, "/api/v1/counters/a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, svc, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, env.Error.Message, "boom")
}

func TestMsgpack(t *testing.T) {
	svc, counters := newTestCounters(t)

	reqBody, err := MsgPackEncodeBytes(map[string]interface{}{"name": "mp", "value": 7})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/counters", bytes.NewReader(reqBody))
	r.Header.Set("Content-Type", ContentTypeMsgpack)
	r.Header.Set("Accept", ContentTypeMsgpack)
	w := httptest.NewRecorder()
	svc.Handler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypeMsgpack, w.Header().Get("Content-Type"))

	var envelope struct {
		HTTPStatus int         `json:"http_status"`
		Data       CounterBody `json:"data"`
	}
	require.NoError(t, MsgPackDecodeBytes(w.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusOK, envelope.HTTPStatus)
	assert.Equal(t, CounterBody{Name: "mp", Value: 7}, envelope.Data)

	assert.Error(t, MsgPackDecodeBytes(nil, &envelope))

	// sum above MaxInt64 keeps its value in msgpack
	_, err = counters.Create("max1", math.MaxInt64)
	require.NoError(t, err)
	_, err = counters.Create("max2", math.MaxInt64)
	require.NoError(t, err)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/counters/extension/values-sum", nil)
	r.Header.Set("Accept", ContentTypeMsgpack)
	w = httptest.NewRecorder()
	svc.Handler().ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypeMsgpack, w.Header().Get("Content-Type"))

	var sumEnvelope struct {
		HTTPStatus int     `json:"http_status"`
		Data       SumBody `json:"data"`
	}
	require.NoError(t, MsgPackDecodeBytes(w.Body.Bytes(), &sumEnvelope))
	assert.Equal(t, http.StatusOK, sumEnvelope.HTTPStatus)
	require.NotNil(t, sumEnvelope.Data.Sum)
	assert.Equal(t, 0, counters.Sum().Cmp(sumEnvelope.Data.Sum))
	assert.Equal(t, 1, sumEnvelope.Data.Sum.Cmp(new(big.Int).SetInt64(math.MaxInt64)))
	expected := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(2))
	expected.Add(expected, big.NewInt(7))
	assert.Equal(t, 0, expected.Cmp(sumEnvelope.Data.Sum))

	// json keeps the number form
	_, env := do(t, svc, http.MethodGet, "/api/v1/counters/extension/values-sum", "")
	var sum SumBody
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, 0, expected.Cmp(sum.Sum))
}

func TestHttpServer(t *testing.T) {
	svc := newTestService(t)
	require.True(t, c.ServiceStart(svc))
	defer c.ServiceStop(svc)

	client := &http.Client{}
	resp, err := client.Post("http://"+svc.Addr()+"/api/v1/counters/live", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPut, "http://"+svc.Addr()+"/api/v1/counters/live", bytes.NewBufferString(`{"value":41}`))
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Post("http://"+svc.Addr()+"/api/v1/counters/live", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	env := &testEnvelope{}
	require.NoError(t, json.Unmarshal(data, env))
	assert.Equal(t, int64(42), decodeCounter(t, env).Value)
}

func TestConfigParse(t *testing.T) {
	conf := &Config{}
	assert.NoError(t, conf.Parse())
	conf.MaxConns = -1
	assert.Error(t, conf.Parse())
}
