package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultBaseURLConstant                = "https://api.github.com"
	acceptHeaderNameConstant              = "Accept"
	acceptHeaderValueConstant             = "application/vnd.github+json"
	contentTypeHeaderNameConstant         = "Content-Type"
	contentTypeHeaderValueConstant        = "application/json"
	usernameFieldNameConstant             = "username"
	secretFieldNameConstant               = "secret"
	organizationFieldNameConstant         = "organization"
	repositoryOwnerFieldNameConstant      = "repository owner"
	repositoryNameFieldNameConstant       = "repository name"
	labelNameFieldNameConstant            = "label name"
	issueTitleFieldNameConstant           = "issue title"
	issueStateFieldNameConstant           = "issue state"
	requiredValueMessageConstant          = "value required"
	invalidInputErrorTemplateConstant     = "%s: %s"
	operationErrorTemplateConstant        = "%s operation failed: %s"
	statusErrorTemplateConstant           = "%s operation returned status %d: %s"
	responseDecodingErrorTemplateConstant = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant  = "%s payload encoding failed: %s"
	requestCreationErrorTemplateConstant  = "%s request creation failed: %s"

	authenticatedUserEndpointConstant = "/user"
	userEndpointTemplateConstant      = "/users/%s"
	organizationEndpointTemplate      = "/orgs/%s"
	repositoryEndpointTemplate        = "/repos/%s/%s"
	labelEndpointTemplateConstant     = "/repos/%s/%s/labels/%s"
	labelsEndpointTemplateConstant    = "/repos/%s/%s/labels"
	issuesEndpointTemplateConstant    = "/repos/%s/%s/issues"
	issueEndpointTemplateConstant     = "/repos/%s/%s/issues/%d"
	rateLimitEndpointConstant         = "/rate_limit"
)

// OperationName describes a named GitHub API operation supported by the client.
type OperationName string

// Operation names used in error reporting.
const (
	checkAuthenticationOperationName OperationName = "CheckAuthentication"
	getUserOperationName             OperationName = "GetUser"
	getOrganizationOperationName     OperationName = "GetOrganization"
	getRepositoryOperationName       OperationName = "GetRepository"
	getLabelOperationName            OperationName = "GetLabel"
	createLabelOperationName         OperationName = "CreateLabel"
	createIssueOperationName         OperationName = "CreateIssue"
	setIssueStateOperationName       OperationName = "SetIssueState"
	remainingRateBudgetOperationName OperationName = "RemainingRateBudget"
)

// UserHandle references a GitHub user account.
type UserHandle struct {
	Login      string
	Identifier int64
}

// OrganizationHandle references a GitHub organization.
type OrganizationHandle struct {
	Login string
}

// RepositoryHandle references a GitHub repository.
type RepositoryHandle struct {
	Owner    string
	Name     string
	FullName string
}

// LabelHandle references a repository label.
type LabelHandle struct {
	Name  string
	Color string
}

// IssueHandle references a created issue.
type IssueHandle struct {
	Number int
	State  string
}

// IssueCreateRequest describes the payload for creating an issue.
type IssueCreateRequest struct {
	Title    string
	Body     string
	Assignee string
	Labels   []string
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps transport failures for GitHub API operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// StatusError reports an unexpected HTTP status from the GitHub API.
type StatusError struct {
	Operation    OperationName
	StatusCode   int
	ResponseBody string
}

// Error describes the status failure.
func (statusError StatusError) Error() string {
	return fmt.Sprintf(statusErrorTemplateConstant, statusError.Operation, statusError.StatusCode, statusError.ResponseBody)
}

// NotFound reports whether the remote entity did not exist.
func (statusError StatusError) NotFound() bool {
	return statusError.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether the provided error is a not-found status failure.
func IsNotFound(candidateError error) bool {
	var statusError StatusError
	if errors.As(candidateError, &statusError) {
		return statusError.NotFound()
	}
	return false
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// ClientConfiguration holds the settings required to construct a Client.
type ClientConfiguration struct {
	BaseURL    string
	Username   string
	Secret     string
	HTTPClient *http.Client
}

// Client issues authenticated requests against the GitHub REST API.
type Client struct {
	baseURL    string
	username   string
	secret     string
	httpClient *http.Client
}

// NewClient constructs a GitHub API client from the provided configuration.
func NewClient(configuration ClientConfiguration) (*Client, error) {
	username := strings.TrimSpace(configuration.Username)
	if len(username) == 0 {
		return nil, InvalidInputError{FieldName: usernameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if len(configuration.Secret) == 0 {
		return nil, InvalidInputError{FieldName: secretFieldNameConstant, Message: requiredValueMessageConstant}
	}

	baseURL := strings.TrimSpace(configuration.BaseURL)
	if len(baseURL) == 0 {
		baseURL = defaultBaseURLConstant
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := configuration.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    baseURL,
		username:   username,
		secret:     configuration.Secret,
		httpClient: httpClient,
	}, nil
}

// CheckAuthentication verifies the credentials and returns the authenticated user.
func (client *Client) CheckAuthentication(executionContext context.Context) (UserHandle, error) {
	var response userResponse
	requestError := client.executeRequest(executionContext, http.MethodGet, authenticatedUserEndpointConstant, nil, &response, checkAuthenticationOperationName, http.StatusOK)
	if requestError != nil {
		return UserHandle{}, requestError
	}
	return UserHandle{Login: response.Login, Identifier: response.Identifier}, nil
}

// GetUser resolves a user account by username.
func (client *Client) GetUser(executionContext context.Context, username string) (UserHandle, error) {
	trimmedUsername := strings.TrimSpace(username)
	if len(trimmedUsername) == 0 {
		return UserHandle{}, InvalidInputError{FieldName: usernameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	var response userResponse
	requestPath := fmt.Sprintf(userEndpointTemplateConstant, url.PathEscape(trimmedUsername))
	requestError := client.executeRequest(executionContext, http.MethodGet, requestPath, nil, &response, getUserOperationName, http.StatusOK)
	if requestError != nil {
		return UserHandle{}, requestError
	}
	return UserHandle{Login: response.Login, Identifier: response.Identifier}, nil
}

// GetOrganization resolves an organization by login name.
func (client *Client) GetOrganization(executionContext context.Context, organizationName string) (OrganizationHandle, error) {
	trimmedName := strings.TrimSpace(organizationName)
	if len(trimmedName) == 0 {
		return OrganizationHandle{}, InvalidInputError{FieldName: organizationFieldNameConstant, Message: requiredValueMessageConstant}
	}

	var response struct {
		Login string `json:"login"`
	}
	requestPath := fmt.Sprintf(organizationEndpointTemplate, url.PathEscape(trimmedName))
	requestError := client.executeRequest(executionContext, http.MethodGet, requestPath, nil, &response, getOrganizationOperationName, http.StatusOK)
	if requestError != nil {
		return OrganizationHandle{}, requestError
	}
	return OrganizationHandle{Login: response.Login}, nil
}

// GetRepository resolves a repository by owner and name.
func (client *Client) GetRepository(executionContext context.Context, owner string, name string) (RepositoryHandle, error) {
	trimmedOwner := strings.TrimSpace(owner)
	if len(trimmedOwner) == 0 {
		return RepositoryHandle{}, InvalidInputError{FieldName: repositoryOwnerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return RepositoryHandle{}, InvalidInputError{FieldName: repositoryNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	var response struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		Owner    struct {
			Login string `json:"login"`
		} `json:"owner"`
	}
	requestPath := fmt.Sprintf(repositoryEndpointTemplate, url.PathEscape(trimmedOwner), url.PathEscape(trimmedName))
	requestError := client.executeRequest(executionContext, http.MethodGet, requestPath, nil, &response, getRepositoryOperationName, http.StatusOK)
	if requestError != nil {
		return RepositoryHandle{}, requestError
	}
	return RepositoryHandle{Owner: response.Owner.Login, Name: response.Name, FullName: response.FullName}, nil
}

// GetLabel fetches a repository label by exact name.
func (client *Client) GetLabel(executionContext context.Context, repository RepositoryHandle, labelName string) (LabelHandle, error) {
	trimmedLabelName := strings.TrimSpace(labelName)
	if len(trimmedLabelName) == 0 {
		return LabelHandle{}, InvalidInputError{FieldName: labelNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	var response labelResponse
	requestPath := fmt.Sprintf(labelEndpointTemplateConstant, url.PathEscape(repository.Owner), url.PathEscape(repository.Name), url.PathEscape(trimmedLabelName))
	requestError := client.executeRequest(executionContext, http.MethodGet, requestPath, nil, &response, getLabelOperationName, http.StatusOK)
	if requestError != nil {
		return LabelHandle{}, requestError
	}
	return LabelHandle{Name: response.Name, Color: response.Color}, nil
}

// CreateLabel creates a repository label with the provided color.
func (client *Client) CreateLabel(executionContext context.Context, repository RepositoryHandle, labelName string, labelColor string) (LabelHandle, error) {
	trimmedLabelName := strings.TrimSpace(labelName)
	if len(trimmedLabelName) == 0 {
		return LabelHandle{}, InvalidInputError{FieldName: labelNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}{Name: trimmedLabelName, Color: labelColor}

	var response labelResponse
	requestPath := fmt.Sprintf(labelsEndpointTemplateConstant, url.PathEscape(repository.Owner), url.PathEscape(repository.Name))
	requestError := client.executeRequest(executionContext, http.MethodPost, requestPath, payload, &response, createLabelOperationName, http.StatusCreated)
	if requestError != nil {
		return LabelHandle{}, requestError
	}
	return LabelHandle{Name: response.Name, Color: response.Color}, nil
}

// CreateIssue creates an issue in the repository.
func (client *Client) CreateIssue(executionContext context.Context, repository RepositoryHandle, request IssueCreateRequest) (IssueHandle, error) {
	if len(strings.TrimSpace(request.Title)) == 0 {
		return IssueHandle{}, InvalidInputError{FieldName: issueTitleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Title    string   `json:"title"`
		Body     string   `json:"body"`
		Assignee string   `json:"assignee,omitempty"`
		Labels   []string `json:"labels"`
	}{Title: request.Title, Body: request.Body, Assignee: request.Assignee, Labels: request.Labels}

	if payload.Labels == nil {
		payload.Labels = []string{}
	}

	var response issueResponse
	requestPath := fmt.Sprintf(issuesEndpointTemplateConstant, url.PathEscape(repository.Owner), url.PathEscape(repository.Name))
	requestError := client.executeRequest(executionContext, http.MethodPost, requestPath, payload, &response, createIssueOperationName, http.StatusCreated)
	if requestError != nil {
		return IssueHandle{}, requestError
	}
	return IssueHandle{Number: response.Number, State: response.State}, nil
}

// SetIssueState edits an existing issue to the requested state.
func (client *Client) SetIssueState(executionContext context.Context, repository RepositoryHandle, issueNumber int, state string) error {
	trimmedState := strings.TrimSpace(state)
	if len(trimmedState) == 0 {
		return InvalidInputError{FieldName: issueStateFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		State string `json:"state"`
	}{State: trimmedState}

	requestPath := fmt.Sprintf(issueEndpointTemplateConstant, url.PathEscape(repository.Owner), url.PathEscape(repository.Name), issueNumber)
	return client.executeRequest(executionContext, http.MethodPatch, requestPath, payload, nil, setIssueStateOperationName, http.StatusOK)
}

// RemainingRateBudget reads the remaining core API request budget.
func (client *Client) RemainingRateBudget(executionContext context.Context) (int, error) {
	var response struct {
		Resources struct {
			Core struct {
				Remaining int `json:"remaining"`
			} `json:"core"`
		} `json:"resources"`
	}
	requestError := client.executeRequest(executionContext, http.MethodGet, rateLimitEndpointConstant, nil, &response, remainingRateBudgetOperationName, http.StatusOK)
	if requestError != nil {
		return 0, requestError
	}
	return response.Resources.Core.Remaining, nil
}

type userResponse struct {
	Login      string `json:"login"`
	Identifier int64  `json:"id"`
}

type labelResponse struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type issueResponse struct {
	Number int    `json:"number"`
	State  string `json:"state"`
}

func (client *Client) executeRequest(executionContext context.Context, method string, requestPath string, payload any, target any, operation OperationName, acceptedStatus int) error {
	var requestBody io.Reader
	if payload != nil {
		payloadBytes, encodingError := json.Marshal(payload)
		if encodingError != nil {
			return PayloadEncodingError{Operation: operation, Cause: encodingError}
		}
		requestBody = bytes.NewReader(payloadBytes)
	}

	request, requestError := http.NewRequestWithContext(executionContext, method, client.baseURL+requestPath, requestBody)
	if requestError != nil {
		return OperationError{Operation: operation, Cause: fmt.Errorf(requestCreationErrorTemplateConstant, operation, requestError)}
	}

	request.SetBasicAuth(client.username, client.secret)
	request.Header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	if payload != nil {
		request.Header.Set(contentTypeHeaderNameConstant, contentTypeHeaderValueConstant)
	}

	response, executionError := client.httpClient.Do(request)
	if executionError != nil {
		return OperationError{Operation: operation, Cause: executionError}
	}
	defer response.Body.Close()

	if response.StatusCode != acceptedStatus {
		responseBody, _ := io.ReadAll(response.Body)
		return StatusError{Operation: operation, StatusCode: response.StatusCode, ResponseBody: strings.TrimSpace(string(responseBody))}
	}

	if target != nil {
		if decodingError := json.NewDecoder(response.Body).Decode(target); decodingError != nil {
			return ResponseDecodingError{Operation: operation, Cause: decodingError}
		}
	}

	return nil
}
