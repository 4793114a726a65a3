// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"fmt"
	"path/filepath"

	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/patch"
)

// AppServiceProvider is patched so the first user is logged in locally
const AppServiceProvider = "app/Providers/AppServiceProvider.php"

// LoginFirstUser replaces the placeholder comment in the provider
const LoginFirstUser = "auth()->loginUsingId(1);"

// Comment stripping defaults
var (
	DefaultCommentDirs       = []string{"app", "database"}
	DefaultCommentExtensions = []string{".php"}
)

// PrepareProvider replaces the "//" placeholder on the configured line of
// AppServiceProvider. The line index matches the stock stub only.
func PrepareProvider(ctx *models.ExecutionContext) models.StepResult {
	op := patch.LineIndex(AppServiceProvider, ctx.Settings.ProviderLine, "//", LoginFirstUser)

	if _, err := patch.ApplyFile(projectPath(ctx, AppServiceProvider), op); err != nil {
		return models.FailureFromError(err)
	}

	return models.Success()
}

// LinkValet links the project with Valet and points APP_URL at it. An empty
// link name does nothing; "." links the project folder under its own name.
func LinkValet(ctx *models.ExecutionContext) models.StepResult {
	link := ctx.Answers.ValetLink
	if link == "" {
		return models.Success()
	}

	commandLine := fmt.Sprintf("valet link %s", link)
	host := link
	if link == "." {
		commandLine = "valet link"
		host = filepath.Base(ctx.ProjectDir)
	}

	if err := run(ctx, commandLine); err != nil {
		return models.FailureFromError(err)
	}

	// Earlier steps may have rewritten .env
	path := projectPath(ctx, EnvFile)
	if _, err := patch.ApplyFile(path, patch.AnchoredKey(EnvFile, "APP_URL", "http://"+host+".test")); err != nil {
		return models.FailureFromError(err)
	}

	content, err := patch.ReadFile(path)
	if err != nil {
		return models.FailureFromError(err)
	}
	ctx.EnvContent = content

	return models.Success()
}

// RemoveComments strips block comments, and line comments when configured,
// from the configured directories
func RemoveComments(ctx *models.ExecutionContext) models.StepResult {
	dirs := ctx.Settings.CommentDirs
	if len(dirs) == 0 {
		dirs = DefaultCommentDirs
	}
	extensions := ctx.Settings.CommentExtensions
	if len(extensions) == 0 {
		extensions = DefaultCommentExtensions
	}

	opts := patch.CommentOptions{Block: true, Line: ctx.Settings.StripLineComments}
	if _, err := patch.StripCommentsInDirs(ctx.ProjectDir, dirs, extensions, opts); err != nil {
		return models.FailureFromError(err)
	}

	return models.Success()
}
