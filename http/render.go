package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// ContentTypeJSON json响应的Content-Type
	ContentTypeJSON = "application/json; charset=utf-8"
	// ContentTypeMsgpack msgpack响应的Content-Type
	ContentTypeMsgpack = "application/msgpack"
)

// ErrorBody 错误详情
type ErrorBody struct {
	Message string `json:"message"`
}

// Envelope 所有响应的统一格式
type Envelope struct {
	Timestamp  time.Time   `json:"timestamp"`
	HTTPStatus int         `json:"http_status"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// StatusError 带有http状态码的错误
type StatusError struct {
	Status int
	Msg    string
}

// NewStatusError create new StatusError
func NewStatusError(status int, msg string) *StatusError {
	return &StatusError{Status: status, Msg: msg}
}

func (p *StatusError) Error() string {
	return p.Msg
}

// HTTPStatus returns the http status code
func (p *StatusError) HTTPStatus() int {
	return p.Status
}

type httpStatuser interface {
	HTTPStatus() int
}

// StatusOf 取得err对应的http状态码,未知的错误为500
func StatusOf(err error) int {
	var s httpStatuser
	if errors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func acceptMsgpack(r *http.Request) bool {
	return r != nil && strings.Contains(r.Header.Get("Accept"), "msgpack")
}

// Render 将data包装在Envelope中,按照请求的Accept使用msgpack或json输出
func Render(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render(w, r, &Envelope{
		Timestamp:  time.Now().UTC(),
		HTTPStatus: status,
		Data:       data,
	})
}

// RenderError 输出err对应的错误响应
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	render(w, r, &Envelope{
		Timestamp:  time.Now().UTC(),
		HTTPStatus: StatusOf(err),
		Error:      &ErrorBody{Message: err.Error()},
	})
}

func render(w http.ResponseWriter, r *http.Request, envelope *Envelope) {
	var (
		body        []byte
		err         error
		contentType string
	)
	if acceptMsgpack(r) {
		contentType = ContentTypeMsgpack
		body, err = MsgPackEncodeBytes(envelope)
	} else {
		contentType = ContentTypeJSON
		body, err = json.Marshal(envelope)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(envelope.HTTPStatus)
	w.Write(body)
}

// DecodeBody 按照请求的Content-Type解析请求体到dest,空的请求体不做解析
func DecodeBody(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return NewStatusError(http.StatusBadRequest, "read body fail: "+err.Error())
	}
	if len(data) == 0 {
		return nil
	}
	if strings.Contains(r.Header.Get("Content-Type"), "msgpack") {
		err = MsgPackDecodeBytes(data, dest)
	} else {
		err = json.Unmarshal(data, dest)
	}
	if err != nil {
		return NewStatusError(http.StatusBadRequest, "invalid body: "+err.Error())
	}
	return nil
}

// NotFound 输出404响应
func NotFound(w http.ResponseWriter, r *http.Request) {
	RenderError(w, r, NewStatusError(http.StatusNotFound, "No handler found for "+r.Method+" "+r.URL.Path))
}
