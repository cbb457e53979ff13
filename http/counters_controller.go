package http

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/d0ngw/counters/counter"
	"github.com/d0ngw/counters/service"
	"github.com/google/uuid"
	"github.com/ugorji/go/codec"
)

// CounterBody the counter in requests and responses
type CounterBody struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type createRequest struct {
	Name  *string `json:"name"`
	Value int64   `json:"value"`
}

// SumBody the response of values-sum. JSON writes the sum as a number,
// msgpack writes it as a decimal string.
type SumBody struct {
	Sum *big.Int `json:"sum"`
}

// CodecEncodeSelf implements codec.Selfer
func (p *SumBody) CodecEncodeSelf(e *codec.Encoder) {
	sum := "0"
	if p.Sum != nil {
		sum = p.Sum.String()
	}
	e.MustEncode(map[string]string{"sum": sum})
}

// CodecDecodeSelf implements codec.Selfer
func (p *SumBody) CodecDecodeSelf(d *codec.Decoder) {
	var body map[string]string
	d.MustDecode(&body)
	sum, ok := new(big.Int).SetString(body["sum"], 10)
	if !ok {
		panic(fmt.Errorf("invalid sum %q", body["sum"]))
	}
	p.Sum = sum
}

// NamesBody the response of names-list
type NamesBody struct {
	Names []string `json:"names"`
}

// CountersController the REST api of counters
type CountersController struct {
	BaseController
	counters *service.Counters
}

// NewCountersController create new CountersController
func NewCountersController(counters *service.Counters) *CountersController {
	return &CountersController{
		BaseController: BaseController{
			Name: "counters",
			Path: "/api/v1/counters",
			PatternMethods: map[string]string{
				"POST":                      "Create",
				"PUT /{name}":               "Insert",
				"POST /{name}":              "Increment",
				"GET /{name}":               "Get",
				"DELETE /{name}":            "Delete",
				"GET /extension/values-sum": "ValuesSum",
				"GET /extension/names-list": "NamesList",
			},
		},
		counters: counters,
	}
}

func renderCounter(w http.ResponseWriter, r *http.Request, cnt counter.Counter, err error) {
	if err != nil {
		RenderError(w, r, err)
		return
	}
	defer cnt.Release()
	Render(w, r, http.StatusOK, &CounterBody{Name: cnt.Name, Value: cnt.Value})
}

// Create creates a counter, a random name is used when the body has none
func (p *CountersController) Create(w http.ResponseWriter, r *http.Request) {
	req := &createRequest{}
	if err := DecodeBody(r, req); err != nil {
		RenderError(w, r, err)
		return
	}
	name := uuid.NewString()
	if req.Name != nil {
		name = *req.Name
	}
	cnt, err := p.counters.Create(name, req.Value)
	renderCounter(w, r, cnt, err)
}

// Insert creates the counter named by the path
func (p *CountersController) Insert(w http.ResponseWriter, r *http.Request) {
	req := &createRequest{}
	if err := DecodeBody(r, req); err != nil {
		RenderError(w, r, err)
		return
	}
	cnt, err := p.counters.Create(r.PathValue("name"), req.Value)
	renderCounter(w, r, cnt, err)
}

// Increment increments the counter named by the path
func (p *CountersController) Increment(w http.ResponseWriter, r *http.Request) {
	cnt, err := p.counters.Increment(r.PathValue("name"))
	renderCounter(w, r, cnt, err)
}

// Get returns the counter named by the path
func (p *CountersController) Get(w http.ResponseWriter, r *http.Request) {
	cnt, err := p.counters.Get(r.PathValue("name"))
	renderCounter(w, r, cnt, err)
}

// Delete deletes the counter named by the path
func (p *CountersController) Delete(w http.ResponseWriter, r *http.Request) {
	cnt, err := p.counters.Delete(r.PathValue("name"))
	renderCounter(w, r, cnt, err)
}

// ValuesSum returns the sum of all counters
func (p *CountersController) ValuesSum(w http.ResponseWriter, r *http.Request) {
	Render(w, r, http.StatusOK, &SumBody{Sum: p.counters.Sum()})
}

// NamesList returns the names of all counters
func (p *CountersController) NamesList(w http.ResponseWriter, r *http.Request) {
	Render(w, r, http.StatusOK, &NamesBody{Names: p.counters.Names()})
}
