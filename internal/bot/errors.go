package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
)

var (
	ErrDuplicateRecord     = errors.New("duplicate record")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnrecognizedCommand = errors.New("unrecognized command")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidArgument     = errors.New("invalid argument")
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func isUserError(err error) bool {
	var missing *activation.MissingFieldsError
	return errors.As(err, &missing) ||
		errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrUnrecognizedCommand) ||
		errors.Is(err, ErrInvalidArgument)
}

// replyFor maps a command failure to the text shown to the caller. Store
// and internal failures get one generic message.
func replyFor(err error) string {
	var missing *activation.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		return "Data belum lengkap, tidak disimpan. Field wajib yang kosong: " + strings.Join(missing.Fields, ", ")
	case errors.Is(err, ErrDuplicateRecord):
		return "Data sudah pernah diinput (SN ONT dan NIK ONT sama), tidak disimpan."
	case errors.Is(err, ErrUnauthorized):
		return "Akses ditolak."
	case errors.Is(err, ErrUnrecognizedCommand):
		return "Perintah tidak dikenal. Ketik /help untuk daftar perintah."
	case errors.Is(err, ErrInvalidArgument):
		return "Argumen tidak valid. Contoh: /laporan mingguan 2026-10-14"
	default:
		return "Terjadi kesalahan sistem. Silakan coba lagi nanti."
	}
}
