package export

import "time"

const BundleVersion = 1

// Bundle is the plaintext shape of one personal-data export. It only ever
// exists in memory; persistence sees the encrypted form.
type Bundle struct {
	ExportID    string                      `json:"exportId"`
	TenantID    string                      `json:"tenantId"`
	UserID      string                      `json:"userId"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	ExpiresAt   time.Time                   `json:"expiresAt"`
	Version     int                         `json:"version"`
	Data        map[string][]map[string]any `json:"data"`
}

// Receipt is returned to the caller exactly once. The password is not stored
// anywhere server-side, which is what makes deletion a crypto-shred.
type Receipt struct {
	ExportID      string    `json:"exportId"`
	DownloadToken string    `json:"downloadToken"`
	Password      string    `json:"password"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Record is the persisted ciphertext plus its download metadata.
type Record struct {
	ExportID           string
	TenantID           string
	UserID             string
	DownloadToken      string
	Ciphertext         []byte
	DownloadsRemaining int
	ExpiresAt          time.Time
	CreatedAt          time.Time
}
