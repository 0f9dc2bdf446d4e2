// Package upload handles object upload operations.
// It provides the storage backends behind s3types.Storage: one built on the
// AWS SDK transfer manager and one built on the MinIO client. Both stream the
// body and switch to multipart uploads once it exceeds the part size.
package upload
