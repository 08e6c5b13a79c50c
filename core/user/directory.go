package user

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"
)

// TeacherDirectory resolves teacher ids to email addresses for notification
// purposes (e.g. event cancellation notices).
type TeacherDirectory struct {
	svc ServiceInterface
}

func NewTeacherDirectory(svc ServiceInterface) *TeacherDirectory {
	return &TeacherDirectory{svc: svc}
}

func (dir *TeacherDirectory) GetTeacherEmail(ctx context.Context, id string) (mail.Address, error) {
	usr, err := dir.svc.GetByID(ctx, id)
	if err != nil {
		return mail.Address{}, err
	}
	if !usr.IsTeacher() {
		return mail.Address{}, errors.Wrapf(ErrNotFound, "user %s is not a teacher", id)
	}
	return mail.Address{Name: usr.Name, Address: usr.Email}, nil
}
