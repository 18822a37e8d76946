package config

import "errors"

var (
	ErrMissingSigningCertificate = errors.New("auth.signing_certificate: one of pem, file or url is required")
	ErrMissingTable              = errors.New("dynamodb.table is required")
	ErrMissingUserIDIndex        = errors.New("dynamodb.user_id_index is required")
	ErrUnknownStorageDriver      = errors.New("storage.driver must be dynamodb or memory")
)
