package directory

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/imamik/symphonyctl/internal/util/retry"
)

// awsAuthCodes are API error codes that no amount of retrying will fix.
var awsAuthCodes = map[string]bool{
	"AccessDenied":          true,
	"AuthFailure":           true,
	"InvalidAccessKeyId":    true,
	"InvalidClientTokenId":  true,
	"SignatureDoesNotMatch": true,
	"UnauthorizedOperation": true,
}

// classifyAWS marks credential and permission failures as fatal.
func classifyAWS(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && awsAuthCodes[apiErr.ErrorCode()] {
		return retry.Fatal(err)
	}
	return err
}
