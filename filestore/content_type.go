package filestore

import "github.com/gabriel-vasile/mimetype"

// ContentTypeOctetStream is used when the content type cannot be determined.
const ContentTypeOctetStream = "application/octet-stream"

// DetectContentType sniffs the MIME type from the leading bytes of data.
func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return ContentTypeOctetStream
	}
	return mimetype.Detect(data).String()
}
