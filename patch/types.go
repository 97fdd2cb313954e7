package patch

import "errors"

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

var (
	ErrFieldAlreadySet = errors.New("field already set")
	ErrPathNotAllowed  = errors.New("path not allowed")
)

type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}
