package migration

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/trackerops/csv2github/internal/githubapi"
)

const (
	projectSeparatorConstant           = "/"
	projectFieldNameConstant           = "project"
	projectRequiredMessageConstant     = "value required"
	projectFormatErrorTemplateConstant = "invalid project identifier: %s"
	unknownOwnerErrorTemplateConstant  = "project owner is neither a user nor an organization: %s"
)

// GitHubGatewayOptions configures construction of the GitHub-backed gateway.
type GitHubGatewayOptions struct {
	BaseURL    string
	Username   string
	Secret     string
	Project    string
	HTTPClient *http.Client
}

// NewGitHubGateway authenticates against the GitHub API, resolves the target
// repository, and returns a gateway scoped to it. Owner resolution order for
// "owner/project" identifiers: explicit user, explicit organization; a bare
// project name targets the authenticated user's account.
func NewGitHubGateway(executionContext context.Context, options GitHubGatewayOptions) (RemoteIssueGateway, error) {
	client, clientError := githubapi.NewClient(githubapi.ClientConfiguration{
		BaseURL:    options.BaseURL,
		Username:   options.Username,
		Secret:     options.Secret,
		HTTPClient: options.HTTPClient,
	})
	if clientError != nil {
		return nil, clientError
	}

	authenticatedUser, authenticationError := client.CheckAuthentication(executionContext)
	if authenticationError != nil {
		return nil, authenticationError
	}

	ownerName, repositoryName, projectError := splitProjectIdentifier(options.Project)
	if projectError != nil {
		return nil, projectError
	}

	if len(ownerName) == 0 {
		ownerName = authenticatedUser.Login
	} else {
		resolvedOwner, ownerError := resolveOwner(executionContext, client, ownerName)
		if ownerError != nil {
			return nil, ownerError
		}
		ownerName = resolvedOwner
	}

	repository, repositoryError := client.GetRepository(executionContext, ownerName, repositoryName)
	if repositoryError != nil {
		return nil, repositoryError
	}

	return &gitHubRemoteGateway{client: client, repository: repository}, nil
}

func splitProjectIdentifier(project string) (string, string, error) {
	trimmedProject := strings.TrimSpace(project)
	if len(trimmedProject) == 0 {
		return "", "", githubapi.InvalidInputError{FieldName: projectFieldNameConstant, Message: projectRequiredMessageConstant}
	}

	components := strings.Split(trimmedProject, projectSeparatorConstant)
	switch len(components) {
	case 1:
		return "", components[0], nil
	case 2:
		if len(components[0]) == 0 || len(components[1]) == 0 {
			return "", "", fmt.Errorf(projectFormatErrorTemplateConstant, trimmedProject)
		}
		return components[0], components[1], nil
	default:
		return "", "", fmt.Errorf(projectFormatErrorTemplateConstant, trimmedProject)
	}
}

func resolveOwner(executionContext context.Context, client *githubapi.Client, ownerName string) (string, error) {
	userHandle, userError := client.GetUser(executionContext, ownerName)
	if userError == nil {
		return userHandle.Login, nil
	}
	if !githubapi.IsNotFound(userError) {
		return "", userError
	}

	organizationHandle, organizationError := client.GetOrganization(executionContext, ownerName)
	if organizationError == nil {
		return organizationHandle.Login, nil
	}
	if !githubapi.IsNotFound(organizationError) {
		return "", organizationError
	}

	return "", fmt.Errorf(unknownOwnerErrorTemplateConstant, ownerName)
}

// gitHubRemoteGateway adapts the githubapi client to the RemoteIssueGateway
// contract, translating not-found status failures into ErrRemoteNotFound.
type gitHubRemoteGateway struct {
	client     *githubapi.Client
	repository githubapi.RepositoryHandle
}

func (gateway *gitHubRemoteGateway) RemainingRateBudget(executionContext context.Context) (int, error) {
	return gateway.client.RemainingRateBudget(executionContext)
}

func (gateway *gitHubRemoteGateway) FetchLabel(executionContext context.Context, labelName string) (LabelHandle, error) {
	fetchedLabel, fetchError := gateway.client.GetLabel(executionContext, gateway.repository, labelName)
	if fetchError != nil {
		if githubapi.IsNotFound(fetchError) {
			return LabelHandle{}, ErrRemoteNotFound
		}
		return LabelHandle{}, fetchError
	}
	return LabelHandle{Name: fetchedLabel.Name, Color: fetchedLabel.Color}, nil
}

func (gateway *gitHubRemoteGateway) CreateLabel(executionContext context.Context, labelName string, labelColor string) (LabelHandle, error) {
	createdLabel, createError := gateway.client.CreateLabel(executionContext, gateway.repository, labelName, labelColor)
	if createError != nil {
		return LabelHandle{}, createError
	}
	return LabelHandle{Name: createdLabel.Name, Color: createdLabel.Color}, nil
}

func (gateway *gitHubRemoteGateway) FetchUser(executionContext context.Context, username string) (UserHandle, error) {
	fetchedUser, fetchError := gateway.client.GetUser(executionContext, username)
	if fetchError != nil {
		if githubapi.IsNotFound(fetchError) {
			return UserHandle{}, ErrRemoteNotFound
		}
		return UserHandle{}, fetchError
	}
	return UserHandle{Login: fetchedUser.Login}, nil
}

func (gateway *gitHubRemoteGateway) CreateIssue(executionContext context.Context, submission IssueSubmission) (IssueHandle, error) {
	labelNames := make([]string, 0, len(submission.Labels))
	for _, labelHandle := range submission.Labels {
		labelNames = append(labelNames, labelHandle.Name)
	}

	createdIssue, creationError := gateway.client.CreateIssue(executionContext, gateway.repository, githubapi.IssueCreateRequest{
		Title:    submission.Title,
		Body:     submission.Body,
		Assignee: submission.Assignee,
		Labels:   labelNames,
	})
	if creationError != nil {
		return IssueHandle{}, creationError
	}
	return IssueHandle{Number: createdIssue.Number}, nil
}

func (gateway *gitHubRemoteGateway) CloseIssue(executionContext context.Context, issue IssueHandle) error {
	return gateway.client.SetIssueState(executionContext, gateway.repository, issue.Number, string(IssueStateClosed))
}
