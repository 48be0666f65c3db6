package global

import (
	"github.com/haierkeys/collab-doc-service/pkg/validator"
)

var Validator *validator.Validator
