package service

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"sparxfest/internal/auth"
	"sparxfest/internal/catalog"
	"sparxfest/internal/dto"
	"sparxfest/internal/mailer"
	"sparxfest/internal/model"
	"sparxfest/internal/queue"
	"sparxfest/internal/rabbit"
	"sparxfest/internal/repo"
	"sparxfest/internal/review"
	"sparxfest/internal/uploader"
	"sparxfest/pkg/validator"
)

// queuedTriggerDelaySeconds gives the store a moment to recover before the
// sync worker replays a freshly parked submission.
const queuedTriggerDelaySeconds = 5

type Service interface {
	GetCatalog(ctx *ginext.Context)
	GetSchedule(ctx *ginext.Context)
	SubmitRegistration(ctx *ginext.Context)
	Login(ctx *ginext.Context)
	ListRegistrations(ctx *ginext.Context)
	ApproveRegistration(ctx *ginext.Context)
	UpdateRegistration(ctx *ginext.Context)
	DeleteRegistration(ctx *ginext.Context)
	ExportRegistrations(ctx *ginext.Context)
}

type service struct {
	repo     repo.Repository
	catalog  *catalog.Catalog
	uploads  uploader.Uploader
	provider auth.Provider
	sessions *auth.Sessions
	store    *queue.Store
	rbt      *rabbit.Client
	mail     *mailer.Mailer
	log      *zerolog.Logger
}

type Deps struct {
	Repo     repo.Repository
	Catalog  *catalog.Catalog
	Uploads  uploader.Uploader
	Provider auth.Provider
	Sessions *auth.Sessions
	Store    *queue.Store
	Rabbit   *rabbit.Client
	Mail     *mailer.Mailer
	Log      *zerolog.Logger
}

func NewService(d Deps) Service {
	return &service{
		repo:     d.Repo,
		catalog:  d.Catalog,
		uploads:  d.Uploads,
		provider: d.Provider,
		sessions: d.Sessions,
		store:    d.Store,
		rbt:      d.Rabbit,
		mail:     d.Mail,
		log:      d.Log,
	}
}

func (s *service) GetCatalog(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, dto.CatalogResponse{
		Technical:    s.catalog.Technical,
		NonTechnical: s.catalog.NonTechnical,
	})
}

func (s *service) GetSchedule(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, s.catalog.Days())
}

// SubmitRegistration runs the whole form workflow: validate every field at
// once, upload the payment proof when the upi+fee gate requires one, then
// create exactly one record. A failed upload aborts with no record; a failed
// create parks the record in the offline queue for background replay.
func (s *service) SubmitRegistration(ctx *ginext.Context) {
	form := dto.RegistrationForm{
		FullName:      ctx.PostForm("full_name"),
		Email:         strings.TrimSpace(ctx.PostForm("email")),
		Phone:         strings.TrimSpace(ctx.PostForm("phone")),
		College:       ctx.PostForm("college"),
		Year:          ctx.PostForm("year"),
		Branch:        ctx.PostForm("branch"),
		Events:        ctx.PostFormArray("events"),
		TeamMembers:   ctx.PostForm("team_members"),
		PaymentMethod: ctx.PostForm("payment_method"),
	}

	fields := validator.FieldErrors{}
	if verr := validator.Validate(ctx, form); verr != nil {
		var fe validator.FieldErrors
		if errors.As(verr, &fe) {
			fields = fe
		}
	}

	totalFee, unknown := s.catalog.TotalFee(form.Events)
	if len(unknown) > 0 && fields["events"] == "" {
		fields["events"] = "Unknown event: " + strings.Join(unknown, ", ")
	}

	proofRequired := form.PaymentMethod == model.PaymentUPI && totalFee > 0
	file, fileErr := ctx.FormFile("payment_screenshot")
	if proofRequired {
		switch {
		case fileErr != nil || file == nil:
			fields["payment_screenshot"] = "Payment screenshot is required for UPI"
		default:
			if err := uploader.ValidateScreenshot(file.Header.Get("Content-Type"), file.Size); err != nil {
				if errors.Is(err, uploader.ErrTooLarge) {
					fields["payment_screenshot"] = "File size must be less than 5MB"
				} else {
					fields["payment_screenshot"] = "Please select a valid image file"
				}
			}
		}
	}

	if len(fields) > 0 {
		s.log.Info().Int("fields", len(fields)).Msg("registration rejected by validation")
		dto.ValidationError(ctx, fields)
		return
	}

	// The proof field is ignored outright when the gate does not require it,
	// even if the client populated it.
	screenshotURL := ""
	if proofRequired {
		src, err := file.Open()
		if err != nil {
			s.log.Error().Err(err).Msg("failed to open uploaded screenshot")
			dto.UploadError(ctx)
			return
		}
		defer src.Close()

		url, err := s.uploads.Upload(ctx.Request.Context(), file.Filename, file.Header.Get("Content-Type"), src)
		if err != nil {
			s.log.Error().Err(err).Msg("screenshot upload failed, aborting submission")
			dto.UploadError(ctx)
			return
		}
		screenshotURL = url
	}

	registration := &model.Registration{
		FullName:             strings.TrimSpace(form.FullName),
		Email:                form.Email,
		Phone:                form.Phone,
		College:              strings.TrimSpace(form.College),
		Year:                 form.Year,
		Branch:               strings.TrimSpace(form.Branch),
		Events:               form.Events,
		TeamMembers:          form.TeamMembers,
		TotalFee:             totalFee,
		PaymentMethod:        form.PaymentMethod,
		PaymentScreenshotURL: screenshotURL,
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
		Status:               model.StatusPending,
	}

	id, err := s.repo.CreateRegistration(ctx.Request.Context(), registration)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to persist registration, parking in offline queue")
		s.parkRegistration(ctx, registration)
		return
	}

	s.log.Info().Int64("registration_id", id).Msg("registration created successfully")

	dto.SuccessCreatedResponse(ctx, dto.RegistrationCreatedResponse{
		ID:        id,
		TotalFee:  registration.TotalFee,
		Timestamp: registration.Timestamp,
		Status:    registration.Status,
	})
}

func (s *service) parkRegistration(ctx *ginext.Context, registration *model.Registration) {
	if s.store == nil {
		dto.InternalServerError(ctx)
		return
	}

	queueID := uuid.NewString()
	if err := s.store.Put(ctx.Request.Context(), queueID, registration); err != nil {
		s.log.Error().Err(err).Msg("failed to park registration in offline queue")
		dto.InternalServerError(ctx)
		return
	}

	if s.rbt != nil {
		msg := dto.SyncTriggerMessage{Tag: dto.SyncTag, QueueID: queueID}
		if err := s.rbt.PublishTrigger(msg, queuedTriggerDelaySeconds); err != nil {
			s.log.Error().Err(err).Msg("failed to publish sync trigger")
		}
	}

	dto.QueuedResponse(ctx, map[string]string{"queue_id": queueID})
}

// Login verifies credentials with the identity provider and issues a session
// token. Provider failures collapse to fixed messages; which of email or
// password was wrong is never revealed.
func (s *service) Login(ctx *ginext.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.UnauthorizedError(ctx, "Please enter both email and password.")
		return
	}

	if err := s.provider.SignIn(ctx.Request.Context(), req.Email, req.Password); err != nil {
		s.log.Warn().Str("email", req.Email).Msg("admin sign-in rejected")
		dto.UnauthorizedError(ctx, auth.MessageFor(err))
		return
	}

	token, err := s.sessions.Issue(req.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to issue session token")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Str("email", req.Email).Msg("admin signed in")
	dto.SuccessResponse(ctx, dto.LoginResponse{Token: token, Email: req.Email})
}

func (s *service) loadSorted(ctx *ginext.Context) ([]model.Registration, bool) {
	regs, err := s.repo.GetAllRegistrations(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load registrations")
		dto.InternalServerError(ctx)
		return nil, false
	}
	return review.Sort(regs), true
}

func filtersFrom(ctx *ginext.Context) review.Filters {
	return review.Filters{
		Search:  ctx.Query("search"),
		Event:   ctx.Query("event"),
		Payment: ctx.Query("payment"),
	}
}

// ListRegistrations returns the canonical list with the three dashboard
// filters applied in memory. Filter options come from the loaded rows, not
// the static catalog; the fee summary covers the filtered rows only.
func (s *service) ListRegistrations(ctx *ginext.Context) {
	canonical, ok := s.loadSorted(ctx)
	if !ok {
		return
	}

	filtered := review.Apply(canonical, filtersFrom(ctx))
	totals := review.Summarize(filtered)

	dto.SuccessResponse(ctx, dto.RegistrationListResponse{
		Registrations: filtered,
		Total:         len(filtered),
		EventOptions:  review.EventOptions(canonical),
		FeeSummary:    dto.FeeSummary{All: totals.All, Cash: totals.Cash, UPI: totals.UPI},
	})
}

// ApproveRegistration forces status=approved, whatever the current status.
// Approving an already-approved record is a no-op that still succeeds.
func (s *service) ApproveRegistration(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid registration ID")
		return
	}

	if err := s.repo.UpdateRegistrationStatusTx(ctx.Request.Context(), id, model.StatusApproved); err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			dto.RegistrationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to approve registration")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("registration_id", id).Msg("registration approved")

	if s.mail != nil {
		if reg, err := s.repo.GetRegistrationByID(ctx.Request.Context(), id); err == nil {
			if err := s.mail.SendStatusEmail(reg.Email, reg.Events, model.StatusApproved); err != nil {
				s.log.Warn().Err(err).Msg("failed to send approval notification")
			}
		}
	}

	dto.SuccessResponse(ctx, map[string]any{"id": id, "status": model.StatusApproved})
}

// UpdateRegistration overwrites the mutable fields wholesale. The total fee
// is recomputed from the edited event list, and the proof URL is cleared
// whenever the upi+fee gate no longer applies.
func (s *service) UpdateRegistration(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid registration ID")
		return
	}

	var req dto.UpdateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	fields := validator.FieldErrors{}
	if verr := validator.Validate(ctx, req); verr != nil {
		var fe validator.FieldErrors
		if errors.As(verr, &fe) {
			fields = fe
		}
	}

	totalFee, unknown := s.catalog.TotalFee(req.Events)
	if len(unknown) > 0 && fields["events"] == "" {
		fields["events"] = "Unknown event: " + strings.Join(unknown, ", ")
	}

	if len(fields) > 0 {
		dto.ValidationError(ctx, fields)
		return
	}

	screenshotURL := req.PaymentScreenshotURL
	if req.PaymentMethod != model.PaymentUPI || totalFee == 0 {
		screenshotURL = ""
	}

	registration := &model.Registration{
		ID:                   id,
		FullName:             strings.TrimSpace(req.FullName),
		Email:                strings.TrimSpace(req.Email),
		Phone:                strings.TrimSpace(req.Phone),
		College:              strings.TrimSpace(req.College),
		Year:                 req.Year,
		Branch:               req.Branch,
		Events:               req.Events,
		TeamMembers:          req.TeamMembers,
		TotalFee:             totalFee,
		PaymentMethod:        req.PaymentMethod,
		PaymentScreenshotURL: screenshotURL,
		Status:               req.Status,
	}

	if err := s.repo.UpdateRegistration(ctx.Request.Context(), id, registration); err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			dto.RegistrationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to update registration")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("registration_id", id).Msg("registration updated")
	dto.SuccessResponse(ctx, registration)
}

// DeleteRegistration permanently removes a record. The confirm parameter is
// the explicit second step: without it the call is rejected.
func (s *service) DeleteRegistration(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid registration ID")
		return
	}

	if ctx.Query("confirm") != "true" {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Deletion must be confirmed")
		return
	}

	if err := s.repo.DeleteRegistration(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			dto.RegistrationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to delete registration")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("registration_id", id).Msg("registration deleted")
	dto.SuccessResponse(ctx, map[string]any{"id": id, "deleted": true})
}

// ExportRegistrations downloads the currently filtered view as CSV, with the
// same filter parameters the list endpoint takes.
func (s *service) ExportRegistrations(ctx *ginext.Context) {
	canonical, ok := s.loadSorted(ctx)
	if !ok {
		return
	}

	filtered := review.Apply(canonical, filtersFrom(ctx))
	data, err := review.ExportCSV(filtered)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build CSV export")
		dto.InternalServerError(ctx)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+review.ExportFilename+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
