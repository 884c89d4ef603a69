package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"credential-service/internal/domain/student"
	apperrors "credential-service/pkg/errors"
)

// User-facing messages of the provisioning endpoint. The handler returns
// them verbatim, so changing them changes the API contract.
const (
	MsgSuccess          = "Email sent and student data saved successfully!"
	MsgMissingFields    = "Email and password are required"
	MsgMailConfigFailed = "Failed to configure email service."
	MsgProcessingFailed = "Failed to process request. Please try again later."
	MsgMethodNotAllowed = "Method Not Allowed"
)

// Mailer defines the interface for the outbound mail channel.
type Mailer interface {
	// Verify checks that the mail channel is reachable and authenticated
	// without sending anything.
	Verify(ctx context.Context) error
	// SendCredentials sends the formatted credential email to the address.
	SendCredentials(ctx context.Context, email, password string) error
}

// Repository defines the interface for persisting provisioned students.
type Repository interface {
	Insert(ctx context.Context, s *student.Student) error
}

// Deduper guards against duplicate provisioning of the same email.
// Acquire returns false when the email was already provisioned within the
// dedupe window; Release undoes an acquire after a failed attempt.
type Deduper interface {
	Acquire(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}

// Usecase implements the credential provisioning sequence: verify the mail
// channel, send the credential email, then insert the student record.
//
// The three steps run strictly sequentially with no retries and no
// compensation between the send and the insert; a failure after the email
// has gone out leaves no record behind. The optional Deduper narrows that
// window for blind client retries but does not make the sequence atomic.
type Usecase struct {
	mailer   Mailer
	repo     Repository
	deduper  Deduper // nil when dedupe is disabled
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new provisioning usecase. deduper may be nil.
func New(m Mailer, r Repository, deduper Deduper, log *zap.Logger) *Usecase {
	return &Usecase{
		mailer:   m,
		repo:     r,
		deduper:  deduper,
		log:      log,
		validate: validator.New(),
	}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error message.
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		}
		return strings.Join(messages, ", ")
	}
	return err.Error()
}

// Provision runs the credential provisioning sequence for one request.
func (uc *Usecase) Provision(ctx context.Context, in Request) (*Response, error) {
	uc.log.Info("provisioning credentials", zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.String("detail", formatValidationError(err)))
		return nil, apperrors.NewValidationError("", MsgMissingFields)
	}

	if uc.deduper != nil {
		acquired, err := uc.deduper.Acquire(ctx, in.Email)
		if err != nil {
			// Dedupe is best-effort; a broken guard must not block provisioning
			uc.log.Warn("dedupe acquire failed, proceeding", zap.String("email", in.Email), zap.Error(err))
		} else if !acquired {
			uc.log.Info("duplicate provisioning request suppressed", zap.String("email", in.Email))
			return &Response{Message: MsgSuccess}, nil
		}
	}

	if err := uc.mailer.Verify(ctx); err != nil {
		uc.log.Error("mail channel verification failed", zap.Error(err))
		uc.releaseDedupe(ctx, in.Email)
		return nil, apperrors.NewUnavailableError("smtp", MsgMailConfigFailed, err)
	}

	if err := uc.mailer.SendCredentials(ctx, in.Email, in.Password); err != nil {
		uc.log.Error("failed to send credential email", zap.String("email", in.Email), zap.Error(err))
		uc.releaseDedupe(ctx, in.Email)
		return nil, apperrors.NewInternalError(MsgProcessingFailed, err)
	}

	name := student.DeriveName(in.Email)

	if err := uc.repo.Insert(ctx, &student.Student{
		Email:    in.Email,
		Password: in.Password,
		Name:     name,
	}); err != nil {
		// The email is already out; there is no compensation for the send
		uc.log.Error("failed to insert student record after email send",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		uc.releaseDedupe(ctx, in.Email)
		return nil, apperrors.NewInternalError(MsgProcessingFailed, err)
	}

	uc.log.Info("student provisioned", zap.String("email", in.Email), zap.String("name", name))
	return &Response{Message: MsgSuccess}, nil
}

func (uc *Usecase) releaseDedupe(ctx context.Context, email string) {
	if uc.deduper == nil {
		return
	}
	if err := uc.deduper.Release(ctx, email); err != nil {
		uc.log.Warn("failed to release dedupe key", zap.String("email", email), zap.Error(err))
	}
}
