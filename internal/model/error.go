package model

import "errors"

var ErrorInvalidInput = errors.New("invalid input")
var ErrorTenantNotFound = errors.New("tenant not found")
var ErrorConversationNotFound = errors.New("conversation not found")
var ErrorMessageNotFound = errors.New("message not found")
var ErrorConflict = errors.New("uniqueness conflict")
var ErrorImmutableField = errors.New("field is immutable")
var ErrorUnauthorized = errors.New("unauthorized")
var ErrorForbidden = errors.New("forbidden")
var ErrorInvalidUsernameOrPassword = errors.New("invalid username or password")
