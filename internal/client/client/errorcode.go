package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Flow identifies the user journey an error occurred in.
type Flow string

const (
	FlowOnboarding                 Flow = "0"
	FlowCommercialTest             Flow = "1"
	FlowVaccination                Flow = "2"
	FlowRecovery                   Flow = "3"
	FlowGGDTest                    Flow = "4"
	FlowPaperproof                 Flow = "5"
	FlowQR                         Flow = "6"
	FlowVaccinationAndPositiveTest Flow = "8"
	FlowDashboard                  Flow = "12"
)

// Step identifies the step of a flow an error occurred in.
type Step string

const (
	StepConfiguration      Step = "10"
	StepPublicKeys         Step = "20"
	StepProviders          Step = "20"
	StepStoringEvents      Step = "60"
	StepNonce              Step = "70"
	StepSigner             Step = "80"
	StepStoringCredentials Step = "90"
)

// ErrorCode renders as "i <flow><step> <provider> <client code> [detail]".
type ErrorCode struct {
	Flow         Flow
	Step         Step
	Provider     string
	ClientCode   string
	DetailedCode *int
}

func (c ErrorCode) String() string {
	provider := c.Provider
	if provider == "" {
		provider = "000"
	}
	s := fmt.Sprintf("i %s%s %s %s", c.Flow, c.Step, provider, c.ClientCode)
	if c.DetailedCode != nil {
		s += " " + strconv.Itoa(*c.DetailedCode)
	}
	return s
}

// NewErrorCode builds the code for a failure in step of flow. The client
// code falls back to the HTTP status when the kind carries none.
func NewErrorCode(se *ServerError, flow Flow, step Step) ErrorCode {
	code, ok := se.Err.ClientCode()
	if !ok {
		code = strconv.Itoa(se.StatusCode)
	}
	ec := ErrorCode{Flow: flow, Step: step, Provider: se.Provider, ClientCode: code}
	if se.Response != nil {
		detail := se.Response.Code
		ec.DetailedCode = &detail
	}
	return ec
}

// ErrorCodeFor extracts a *ServerError from err and renders its code.
func ErrorCodeFor(err error, flow Flow, step Step) (ErrorCode, bool) {
	var se *ServerError
	if !errors.As(err, &se) {
		return ErrorCode{}, false
	}
	return NewErrorCode(se, flow, step), true
}

// FlattenErrorCodes joins codes for display.
func FlattenErrorCodes(codes []ErrorCode) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = c.String()
	}
	return strings.Join(parts, "<br />")
}
