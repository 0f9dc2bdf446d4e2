// Package config loads the transfer configuration for the uploader.
//
// Settings come from three layers, highest precedence first:
//
//  1. command-line flags registered with RegisterFlags
//  2. process environment variables
//  3. an optional dotenv file (".env" in the working directory by default)
//
// Load never validates; call Validate before doing any filesystem or
// network work so that a missing bucket or endpoint is reported first.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/input-output-hk/s3upload/errors"
	"github.com/input-output-hk/s3upload/internal/scanner"
	"github.com/input-output-hk/s3upload/internal/validation"
	"github.com/input-output-hk/s3upload/s3types"
)

// Environment variable names
const (
	EnvAccessKeyID       = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey   = "AWS_SECRET_ACCESS_KEY"
	EnvSourceDir         = "DIR_PATH"
	EnvBucket            = "S3_BUCKET"
	EnvEndpoint          = "S3_ENDPOINT_URL"
	EnvRegion            = "AWS_REGION"
	EnvForcePathStyle    = "S3_FORCE_PATH_STYLE"
	EnvBackend           = "S3_BACKEND"
	EnvContinueOnError   = "UPLOAD_CONTINUE_ON_ERROR"
	EnvExclude           = "UPLOAD_EXCLUDE"
	EnvInclude           = "UPLOAD_INCLUDE"
	EnvDetectContentType = "UPLOAD_DETECT_CONTENT_TYPE"
	EnvDryRun            = "UPLOAD_DRY_RUN"
)

// DefaultEnvFile is read when no env file is named explicitly. It may be absent.
const DefaultEnvFile = ".env"

// Flag names
const (
	FlagSourceDir         = "dir"
	FlagBucket            = "bucket"
	FlagEndpoint          = "endpoint"
	FlagRegion            = "region"
	FlagBackend           = "backend"
	FlagForcePathStyle    = "force-path-style"
	FlagEnvFile           = "env-file"
	FlagExclude           = "exclude"
	FlagInclude           = "include"
	FlagContinueOnError   = "continue-on-error"
	FlagDetectContentType = "detect-content-type"
	FlagDryRun            = "dry-run"
)

// scalar flags and the environment variable each one overrides
var flagEnv = map[string]string{
	FlagSourceDir:         EnvSourceDir,
	FlagBucket:            EnvBucket,
	FlagEndpoint:          EnvEndpoint,
	FlagRegion:            EnvRegion,
	FlagBackend:           EnvBackend,
	FlagForcePathStyle:    EnvForcePathStyle,
	FlagContinueOnError:   EnvContinueOnError,
	FlagDetectContentType: EnvDetectContentType,
	FlagDryRun:            EnvDryRun,
}

// Config is the transfer configuration for one run.
type Config struct {
	// SourceDir is the directory to upload
	SourceDir string

	// Bucket is the destination bucket
	Bucket string

	// Endpoint is the object-storage service URL
	Endpoint string

	// Region is the signing region
	Region string

	// Credentials are the static access keys; either half may be empty
	Credentials s3types.Credentials

	// ForcePathStyle selects path-style bucket addressing
	ForcePathStyle bool

	// Backend names the storage client implementation
	Backend string

	// ContinueOnError keeps uploading after a file fails
	ContinueOnError bool

	// Excludes are glob patterns for files that must not be uploaded
	Excludes []string

	// Includes, when set, restrict uploads to matching files
	Includes []string

	// DetectContentType sniffs and sends a Content-Type per file
	DetectContentType bool

	// DryRun lists the files without uploading them
	DryRun bool

	// EnvFile is the dotenv file that was read, if any
	EnvFile string
}

// LoadOptions controls where Load reads settings from.
type LoadOptions struct {
	// EnvFile names a dotenv file that must exist. When empty, DefaultEnvFile
	// is read if present. A changed --env-file flag takes precedence.
	EnvFile string

	// Flags are command-line flags registered with RegisterFlags; may be nil
	Flags *pflag.FlagSet
}

// RegisterFlags defines the configuration flags on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(FlagSourceDir, "", "directory to upload (env "+EnvSourceDir+")")
	flags.String(FlagBucket, "", "destination bucket (env "+EnvBucket+")")
	flags.String(FlagEndpoint, "", "object storage endpoint URL (env "+EnvEndpoint+")")
	flags.String(FlagRegion, s3types.DefaultRegion, "signing region (env "+EnvRegion+")")
	flags.String(FlagBackend, string(s3types.BackendAWS), "storage client: aws or minio (env "+EnvBackend+")")
	flags.Bool(FlagForcePathStyle, true, "use path-style bucket addressing (env "+EnvForcePathStyle+")")
	flags.String(FlagEnvFile, "", "dotenv file to read (default "+DefaultEnvFile+" if present)")
	flags.StringSlice(FlagExclude, nil, "glob of files to skip, repeatable (env "+EnvExclude+")")
	flags.StringSlice(FlagInclude, nil, "glob of files to upload, repeatable (env "+EnvInclude+")")
	flags.Bool(FlagContinueOnError, false, "keep going after a file fails (env "+EnvContinueOnError+")")
	flags.Bool(FlagDetectContentType, false, "detect and send Content-Type (env "+EnvDetectContentType+")")
	flags.Bool(FlagDryRun, false, "list files without uploading (env "+EnvDryRun+")")
}

// Load reads the configuration from flags, the environment and the env file.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	for _, env := range []string{
		EnvAccessKeyID, EnvSecretAccessKey, EnvSourceDir, EnvBucket, EnvEndpoint, EnvRegion,
		EnvForcePathStyle, EnvBackend, EnvContinueOnError, EnvExclude, EnvInclude,
		EnvDetectContentType, EnvDryRun,
	} {
		if err := v.BindEnv(env, env); err != nil {
			return nil, errors.NewConfigError(env, err)
		}
	}

	v.SetDefault(EnvRegion, s3types.DefaultRegion)
	v.SetDefault(EnvForcePathStyle, true)
	v.SetDefault(EnvBackend, string(s3types.BackendAWS))

	envFile, explicit := opts.EnvFile, opts.EnvFile != ""
	if opts.Flags != nil {
		for flag, env := range flagEnv {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(env, f); err != nil {
					return nil, errors.NewConfigError(env, err)
				}
			}
		}
		if opts.Flags.Changed(FlagEnvFile) {
			name, err := opts.Flags.GetString(FlagEnvFile)
			if err != nil {
				return nil, errors.NewConfigError(FlagEnvFile, err)
			}
			envFile, explicit = name, true
		}
	}

	if envFile == "" {
		envFile = DefaultEnvFile
	}

	loaded, err := readEnvFile(v, envFile, explicit)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SourceDir: v.GetString(EnvSourceDir),
		Bucket:    v.GetString(EnvBucket),
		Endpoint:  v.GetString(EnvEndpoint),
		Region:    v.GetString(EnvRegion),
		Credentials: s3types.Credentials{
			AccessKeyID:     v.GetString(EnvAccessKeyID),
			SecretAccessKey: v.GetString(EnvSecretAccessKey),
		},
		ForcePathStyle:    v.GetBool(EnvForcePathStyle),
		Backend:           v.GetString(EnvBackend),
		ContinueOnError:   v.GetBool(EnvContinueOnError),
		DetectContentType: v.GetBool(EnvDetectContentType),
		DryRun:            v.GetBool(EnvDryRun),
	}
	if loaded {
		cfg.EnvFile = envFile
	}

	cfg.Excludes, err = patternList(v, opts.Flags, FlagExclude, EnvExclude)
	if err != nil {
		return nil, err
	}
	cfg.Includes, err = patternList(v, opts.Flags, FlagInclude, EnvInclude)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// readEnvFile merges a dotenv file into v below the environment.
// It reports whether the file was read.
func readEnvFile(v *viper.Viper, path string, explicit bool) (bool, error) {
	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		notFound := errors.As(err, &configFileNotFound) || os.IsNotExist(err)
		if notFound && !explicit {
			return false, nil
		}
		return false, errors.NewConfigError("env file "+path, err)
	}

	return true, nil
}

// patternList reads a glob list from a repeatable flag, falling back to a
// comma-separated variable from the environment or env file.
func patternList(v *viper.Viper, flags *pflag.FlagSet, flag, env string) ([]string, error) {
	if flags != nil && flags.Changed(flag) {
		patterns, err := flags.GetStringSlice(flag)
		if err != nil {
			return nil, errors.NewConfigError(flag, err)
		}
		return patterns, nil
	}

	var patterns []string
	for _, p := range strings.Split(v.GetString(env), ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

// Validate checks the settings an upload cannot start without.
// S3_BUCKET is checked before S3_ENDPOINT_URL. A bucket of only whitespace
// can never name a bucket and counts as missing. The source directory is left
// to the walk, which reports a filesystem error when it is unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.NewConfigError(EnvBucket, errors.ErrMissingSetting)
	}

	if err := validation.ValidateEndpoint(c.Endpoint); err != nil {
		return errors.NewConfigError(EnvEndpoint, err)
	}

	if _, err := s3types.ParseBackend(c.Backend); err != nil {
		return errors.NewConfigError(EnvBackend, fmt.Errorf("%w: %w", errors.ErrInvalidSetting, err))
	}

	matcher := scanner.NewPatternMatcher()
	if errs := matcher.ValidatePatterns(c.Excludes); len(errs) > 0 {
		return errors.NewConfigError(EnvExclude, fmt.Errorf("%w: %w", errors.ErrInvalidSetting, errors.Join(errs...)))
	}
	if errs := matcher.ValidatePatterns(c.Includes); len(errs) > 0 {
		return errors.NewConfigError(EnvInclude, fmt.Errorf("%w: %w", errors.ErrInvalidSetting, errors.Join(errs...)))
	}

	return nil
}

// ErrorPolicy returns the error policy selected by ContinueOnError.
func (c *Config) ErrorPolicy() s3types.ErrorPolicy {
	if c.ContinueOnError {
		return s3types.ErrorPolicyContinue
	}
	return s3types.ErrorPolicyAbort
}
