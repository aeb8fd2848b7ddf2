package westgard

import (
	"os"

	"github.com/stvp/rollbar"
)

// ErrorReporter sends unexpected errors to an external crash reporting
// service.  Data is anonymous and consists only of the error and a stack trace.
type ErrorReporter interface {
	ReportError(err error)
}

type errorService struct {
	suppress bool
}

func init() {
	switch env := os.Getenv("WESTGARD_ENV"); env {
	case "development":
		rollbar.Environment = "development"
	default:
		rollbar.Environment = "production"
	}
}

// NewErrorReporter returns a Rollbar backed reporter.  Nothing is sent when
// error reports are disabled or no token is configured.
func NewErrorReporter(c Config) ErrorReporter {
	if len(c.RollbarToken) > 0 {
		rollbar.Token = c.RollbarToken
	}
	return errorService{suppress: c.NoErrorReports || len(rollbar.Token) == 0}
}

// ReportError will send the result of an unexpected error to Rollbar
func (e errorService) ReportError(err error) {
	if e.suppress || err == nil {
		return
	}
	rollbar.Error(rollbar.ERR, err)
}

// FlushErrorReports blocks until queued error reports have been sent
func FlushErrorReports() {
	rollbar.Wait()
}
