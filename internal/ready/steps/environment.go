// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"github.com/kusari-oss/ready/internal/core/database"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/patch"
)

const environmentUnavailable = "Unable to prepare the environment. Please, review the docs."

// SQLiteDatabase is where a sqlite database lives when the credentials do
// not name one
const SQLiteDatabase = "database/database.sqlite"

// PrepareEnvironment copies the database credentials into .env. Host, port,
// username and password are only replaced when supplied.
func PrepareEnvironment(ctx *models.ExecutionContext) models.StepResult {
	file := ctx.Settings.CredentialsFile
	if len(ctx.Credentials) == 0 {
		return models.FailureFromError(&ConfigurationError{File: file, Reason: environmentUnavailable})
	}

	connection := ctx.Credential("DB_CONNECTION")
	if connection == "" {
		return models.FailureFromError(&ConfigurationError{File: file, Key: "DB_CONNECTION", Reason: environmentUnavailable})
	}

	dbName := ctx.Credential("DB_DATABASE")
	if connection == "sqlite" {
		if dbName == "" {
			dbName = SQLiteDatabase
		}
		dbName = projectPath(ctx, dbName)
	}

	ops := []patch.Operation{
		patch.ExactLine(EnvFile, "DB_CONNECTION=mysql", "DB_CONNECTION="+connection),
	}
	if host := ctx.Credential("DB_HOST"); host != "" {
		ops = append(ops, patch.ExactLine(EnvFile, "DB_HOST=127.0.0.1", "DB_HOST="+host))
	}
	if port := ctx.Credential("DB_PORT"); port != "" {
		ops = append(ops, patch.ExactLine(EnvFile, "DB_PORT=3306", "DB_PORT="+port))
	}
	if dbName != "" {
		ops = append(ops, patch.AnchoredKey(EnvFile, "DB_DATABASE", dbName))
	}
	if username := ctx.Credential("DB_USERNAME"); username != "" {
		ops = append(ops, patch.ExactLine(EnvFile, "DB_USERNAME=root", "DB_USERNAME="+username))
	}
	if password := ctx.Credential("DB_PASSWORD"); password != "" {
		ops = append(ops, patch.ExactLine(EnvFile, "DB_PASSWORD=", "DB_PASSWORD="+password))
	}

	path := projectPath(ctx, EnvFile)
	if _, err := patch.ApplyFile(path, ops...); err != nil {
		return models.FailureFromError(err)
	}

	content, err := patch.ReadFile(path)
	if err != nil {
		return models.FailureFromError(err)
	}
	ctx.EnvContent = content

	if connection == "sqlite" {
		if _, err := database.EnsureSQLite(ctx.Context(), dbName); err != nil {
			return models.FailureFromError(err)
		}
	}

	return models.Success()
}
