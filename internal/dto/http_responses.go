package dto

import (
	"github.com/wb-go/wbf/ginext"

	"sparxfest/internal/model"
)

const (
	FieldIncorrect     = "FIELD_INCORRECT"
	ValidationFailed   = "VALIDATION_FAILED"
	UploadFailed       = "UPLOAD_FAILED"
	AuthFailed         = "AUTH_FAILED"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	RegistrationNotFound = "REGISTRATION_NOT_FOUND"
	RegistrationQueued   = "REGISTRATION_QUEUED"
)

// RegistrationForm carries the multipart form fields of a submission. The
// screenshot file travels separately; events arrive as repeated form values.
type RegistrationForm struct {
	FullName      string   `form:"full_name" validate:"required,notblank"`
	Email         string   `form:"email" validate:"required,emailshape"`
	Phone         string   `form:"phone" validate:"required,indianphone"`
	College       string   `form:"college" validate:"required,notblank"`
	Year          string   `form:"year" validate:"required,studyyear"`
	Branch        string   `form:"branch" validate:"required,notblank"`
	Events        []string `form:"events" validate:"required,min=1"`
	TeamMembers   string   `form:"team_members"`
	PaymentMethod string   `form:"payment_method" validate:"required,oneof=cash upi"`
}

// SyncTag marks background-sync triggers for the offline replay worker.
const SyncTag = "registration-sync"

// SyncTriggerMessage asks the sync worker to drain the local queue. QueueID
// names the entry whose parking caused the trigger; the worker still replays
// the whole queue in order.
type SyncTriggerMessage struct {
	Tag     string `json:"tag"`
	QueueID string `json:"queue_id,omitempty"`
}

// LoginRequest is validated for presence only. Email shape is the identity
// provider's call; its INVALID_EMAIL code maps to the user-facing message.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// UpdateRegistrationRequest is a full overwrite of the mutable fields, not a
// partial patch. TotalFee is absent on purpose: it is recomputed from Events.
type UpdateRegistrationRequest struct {
	FullName             string   `json:"full_name" validate:"required,notblank"`
	Email                string   `json:"email" validate:"required,emailshape"`
	Phone                string   `json:"phone" validate:"required,indianphone"`
	College              string   `json:"college" validate:"required,notblank"`
	Year                 string   `json:"year"`
	Branch               string   `json:"branch"`
	Events               []string `json:"events" validate:"required,min=1"`
	TeamMembers          string   `json:"team_members"`
	PaymentMethod        string   `json:"payment_method" validate:"required,oneof=cash upi"`
	PaymentScreenshotURL string   `json:"payment_screenshot_url"`
	Status               string   `json:"status" validate:"required,oneof=pending approved rejected"`
}

type RegistrationCreatedResponse struct {
	ID        int64  `json:"id"`
	TotalFee  int    `json:"total_fee"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

type FeeSummary struct {
	All  int `json:"all"`
	Cash int `json:"cash"`
	UPI  int `json:"upi"`
}

// RegistrationListResponse is the admin dashboard payload: the filtered rows
// plus the derived bits the dashboard shows next to them.
type RegistrationListResponse struct {
	Registrations []model.Registration `json:"registrations"`
	Total         int                  `json:"total"`
	EventOptions  []string             `json:"event_options"`
	FeeSummary    FeeSummary           `json:"fee_summary"`
}

type CatalogResponse struct {
	Technical    []model.Event `json:"technical"`
	NonTechnical []model.Event `json:"non_technical"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code   string            `json:"code"`
	Desc   string            `json:"desc"`
	Fields map[string]string `json:"fields,omitempty"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

// ValidationError reports every failed field at once, keyed by form name.
func ValidationError(c *ginext.Context, fields map[string]string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code:   ValidationFailed,
			Desc:   "One or more fields are invalid",
			Fields: fields,
		},
	})
}

func UploadError(c *ginext.Context) {
	c.JSON(502, Response{
		Status: "error",
		Error: &Error{
			Code: UploadFailed,
			Desc: "There was an error uploading your screenshot. Please try again.",
		},
	})
}

func UnauthorizedError(c *ginext.Context, desc string) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: AuthFailed,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func RegistrationNotFoundError(c *ginext.Context) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: RegistrationNotFound,
			Desc: "Registration not found",
		},
	})
}

// QueuedResponse tells the client the submission could not be persisted right
// now but was parked for background replay.
func QueuedResponse(c *ginext.Context, data any) {
	c.JSON(503, Response{
		Status: "queued",
		Error: &Error{
			Code: RegistrationQueued,
			Desc: "There was an error with your registration. It will be retried automatically.",
		},
		Data: data,
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
