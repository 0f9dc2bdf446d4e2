// Package s3upload uploads a local directory tree to an S3-compatible bucket.
//
// Every regular file below the source directory is streamed to the bucket
// under a key equal to its path with backslashes replaced by forward
// slashes. Files whose name ends in ".gitkeep" are skipped. Files are
// uploaded one at a time, in the order the directory walk yields them, and
// a confirmation line is written for each:
//
//	Uploaded data/a.txt to S3 bucket my-bucket
//
// Quick start:
//
//	cfg, err := config.Load(config.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	result, err := s3upload.Upload(ctx, *cfg)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("uploaded %d files\n", result.FilesUploaded)
//
// A Client can also be built directly with New and functional options, or
// over any s3types.Storage with NewWithStorage.
//
// Errors are *errors.Error values classified as configuration, filesystem
// or storage failures; see the errors package.
package s3upload
