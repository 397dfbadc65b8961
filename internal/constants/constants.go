package constants

// Username limits, applied after trimming
const (
	MinUsernameLength = 3
	MaxUsernameLength = 16
)

// Photo uploads
const (
	MaxPhotoSize   = int64(10 << 20) // 10 MiB
	PhotoFormField = "photo"
	UserPhotosDir  = "users"
	GroupPhotosDir = "groups"
)

// EnvDevelopment enables debug logging and gin debug mode
const EnvDevelopment = "development"
