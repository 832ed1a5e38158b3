package cli

import (
	"errors"
	"fmt"
)

var errConfirmRequired = errors.New("refusing to delete without --yes")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}
