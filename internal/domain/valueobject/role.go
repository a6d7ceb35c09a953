package valueobject

import "github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"

type Role string

const (
	RoleClient Role = "client"
	RoleWriter Role = "writer"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleWriter || r == RoleAdmin
}

func NewRole(v string) (Role, error) {
	r := Role(v)
	if !r.IsValid() {
		return "", apperror.Validation("некорректная роль")
	}
	return r, nil
}

// Bucket - логическое хранилище файлов.
type Bucket string

const (
	BucketOrderAttachments   Bucket = "order-attachments"
	BucketMessageAttachments Bucket = "message-attachments"
	BucketSubmissionFiles    Bucket = "submission-files"
)

func (b Bucket) IsValid() bool {
	return b == BucketOrderAttachments || b == BucketMessageAttachments || b == BucketSubmissionFiles
}
