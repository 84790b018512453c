package profile

import (
	"errors"
	"net/http"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/middleware"
	"github.com/adearn/adearn-api/internal/pkg/imaging"
	"github.com/adearn/adearn-api/internal/pkg/response"
	"github.com/adearn/adearn-api/internal/pkg/storage"
)

// maxUploadSize leaves room for multipart overhead.
const maxUploadSize = 6 << 20

type Handler struct {
	service  *Service
	accounts *account.Service
}

func NewHandler(service *Service, accounts *account.Service) *Handler {
	return &Handler{service: service, accounts: accounts}
}

// UploadAvatar handles POST /me/avatar
// Multipart form: file
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if !h.service.Enabled() {
		response.NotImplemented(w, "Avatar uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	snap, err := h.service.UpdateAvatar(r.Context(), middleware.GetAccountID(r.Context()), file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			response.BadRequest(w, "File exceeds maximum size")
		case errors.Is(err, storage.ErrInvalidMimeType):
			response.BadRequest(w, "File type not allowed")
		case errors.Is(err, storage.ErrEmptyFile):
			response.BadRequest(w, "File is empty")
		case errors.Is(err, imaging.ErrTooSmall):
			response.BadRequest(w, "Image is too small")
		case errors.Is(err, imaging.ErrInvalidImage):
			response.BadRequest(w, "Image cannot be read")
		case errors.Is(err, ErrAvatarDisabled):
			response.NotImplemented(w, "Avatar uploads are not configured")
		default:
			account.WriteError(w, err)
		}
		return
	}

	response.OK(w, account.NewAccountResponse(snap.Account, h.accounts.Catalogue()))
}
