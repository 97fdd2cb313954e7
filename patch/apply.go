package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Set writes value at pointer with a single add operation. It fails if the
// pointer is not allowed or already holds a value.
func Set[T any](current T, pointer string, value string, allowedPaths map[string]bool) (T, error) {
	ops := []Operation{{Op: OperationAdd, Path: pointer, Value: value}}
	if err := ValidatePatchOperations(ops, allowedPaths); err != nil {
		var zero T
		return zero, err
	}
	return ApplyRFC6902(current, ops)
}

// ApplyRFC6902 applies ops to current. Add operations never overwrite a
// value that is already present.
func ApplyRFC6902[T any](current T, ops []Operation) (T, error) {
	var zero T

	if len(ops) == 0 {
		return current, nil
	}

	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal current state: %w", err)
	}

	if err := guardOperations(currentJSON, ops); err != nil {
		return zero, err
	}

	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal patch operations: %w", err)
	}

	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to decode patch: %w", err)
	}

	modifiedJSON, err := patch.Apply(currentJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to apply patch: %w", err)
	}

	var result T
	if err := sonic.Unmarshal(modifiedJSON, &result); err != nil {
		return zero, fmt.Errorf("type mismatch: patch would result in invalid type T: %w", err)
	}

	return result, nil
}

func guardOperations(currentJSON []byte, ops []Operation) error {
	var doc any
	if err := sonic.Unmarshal(currentJSON, &doc); err != nil {
		return fmt.Errorf("failed to decode current state: %w", err)
	}
	for i, op := range ops {
		if op.Op == OperationAdd && op.Path != "" && pathExists(doc, op.Path) {
			return fmt.Errorf("operation %d: %w: %s", i, ErrFieldAlreadySet, op.Path)
		}
	}
	return nil
}

func pathExists(doc any, path string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}

	tokens := strings.Split(path[1:], "/")
	cur := doc
	for _, token := range tokens {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			value, ok := node[token]
			if !ok {
				return false
			}
			cur = value
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return false
			}
			cur = node[index]
		default:
			return false
		}
	}

	return true
}
