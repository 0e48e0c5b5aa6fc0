package domain

// UploadReceipt is what the ingestion endpoint answered. StatusCode is kept
// so callers can tell a rejection from a success without an identifier.
type UploadReceipt struct {
	StatusCode int
	ID         string
}

func (r UploadReceipt) Accepted() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// PublishEvent is broadcast after every successful publish.
type PublishEvent struct {
	Type           string `json:"type"`
	Username       string `json:"username"`
	ContentAddress string `json:"txId"`
	Owner          string `json:"owner"`
	Version        int64  `json:"version"`
	URL            string `json:"url"`
}
