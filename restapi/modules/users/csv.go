package users

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/userdesk/console-backend/database"
	"github.com/userdesk/console-backend/events/modules/users"
	"github.com/userdesk/console-backend/model"
	"github.com/userdesk/console-backend/restapi/modules/auth"
)

const maxCSVSize = 5 * 1024 * 1024

var (
	requiredCSVColumns = []string{"name", "email", "password"}
	optionalCSVColumns = []string{"role", "status", "account_role"}
)

// RowError reports the validation failures of one CSV data row. Row numbers
// are 1-based file positions, so the first data row is row 2.
type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// UploadResult is the body of a successful CSV import.
type UploadResult struct {
	TotalRows    int        `json:"total_rows"`
	UsersCreated int        `json:"users_created"`
	Errors       []RowError `json:"errors"`
}

// UploadCSV handles POST /users/upload-csv. Admin only.
func UploadCSV(db database.DBConnection, producer *userevents.Producer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided"})
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File must be a CSV file"})
		}
		if fileHeader.Size > maxCSVSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File size exceeds maximum allowed size of 5MB"})
		}

		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read uploaded file"})
		}
		defer file.Close()

		ctx := c.Context()

		result, errMsg := importCSV(ctx, db, file)
		if errMsg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
		}

		if result.UsersCreated > 0 {
			producer.Publish(ctx, userevents.EventUserImported, "", fmt.Sprintf("%d users imported", result.UsersCreated))
		}

		return c.JSON(result)
	}
}

// validateCSVHeader checks the header row against the known column set.
// Returns a non-empty message describing the first problem found.
func validateCSVHeader(header []string) (map[string]int, string) {
	known := map[string]bool{}
	for _, col := range requiredCSVColumns {
		known[col] = true
	}
	for _, col := range optionalCSVColumns {
		known[col] = true
	}

	columns := map[string]int{}
	var unknown, duplicate []string
	for i, raw := range header {
		col := strings.ToLower(strings.TrimSpace(raw))
		if !known[col] {
			unknown = append(unknown, col)
			continue
		}
		if _, seen := columns[col]; seen {
			duplicate = append(duplicate, col)
			continue
		}
		columns[col] = i
	}

	if len(unknown) > 0 {
		return nil, "Unknown columns: " + strings.Join(unknown, ", ")
	}
	if len(duplicate) > 0 {
		return nil, "Duplicate columns: " + strings.Join(duplicate, ", ")
	}

	var missing []string
	for _, col := range requiredCSVColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, "Missing required columns: " + strings.Join(missing, ", ")
	}

	return columns, ""
}

// importCSV parses and applies the upload. File-level problems come back as
// the second return value; row-level problems go into the result's error list.
func importCSV(ctx context.Context, db database.DBConnection, file io.Reader) (*UploadResult, string) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, "CSV file is empty"
	}
	if err != nil {
		return nil, "Failed to parse CSV file"
	}

	columns, errMsg := validateCSVHeader(header)
	if errMsg != "" {
		return nil, errMsg
	}

	result := &UploadResult{Errors: []RowError{}}
	seenEmails := map[string]bool{}

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Errors: []string{"Malformed CSV row"}})
			continue
		}

		result.TotalRows++

		user, rowErrs := rowToUser(record, columns)
		if len(rowErrs) == 0 {
			if seenEmails[user.Email] {
				rowErrs = append(rowErrs, "Duplicate email in file: "+user.Email)
			} else if inUse, err := emailInUse(ctx, db, user.Email, ""); err != nil {
				rowErrs = append(rowErrs, "Failed to check for existing user")
			} else if inUse {
				rowErrs = append(rowErrs, "Email already registered: "+user.Email)
			}
		}

		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Errors: rowErrs})
			continue
		}

		if _, err := db.Collections["users"].CreateDocument(ctx, user); err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Errors: []string{"Failed to create user"}})
			continue
		}

		seenEmails[user.Email] = true
		result.UsersCreated++
	}

	return result, ""
}

// rowToUser validates one CSV data row and builds the user document.
// All validation failures for the row are collected, not just the first.
func rowToUser(record []string, columns map[string]int) (*model.User, []string) {
	cell := func(col string) string {
		idx, ok := columns[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var errs []string

	name := cell("name")
	if err := model.ValidateName(name); err != nil {
		errs = append(errs, err.Error())
	}
	email := cell("email")
	if err := model.ValidateEmail(email); err != nil {
		errs = append(errs, err.Error())
	}
	password := cell("password")
	if err := model.ValidatePassword(password); err != nil {
		errs = append(errs, err.Error())
	}

	role := model.JobRole(cell("role"))
	if !role.Valid() {
		errs = append(errs, "Invalid role: "+string(role)+". Must be 'manager' or 'developer'")
	}
	status := model.StatusActive
	if raw := cell("status"); raw != "" {
		status = model.Status(raw)
		if !status.Valid() {
			errs = append(errs, "Invalid status: "+raw+". Must be 'active' or 'inactive'")
		}
	}
	accountRole := model.RoleEndUser
	if raw := cell("account_role"); raw != "" {
		accountRole = model.AccountRole(raw)
		if !accountRole.Valid() {
			errs = append(errs, "Invalid account_role: "+raw)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	user := model.NewUser(name, email)
	user.Key = uuid.New().String()
	user.Role = role
	user.Status = status
	user.AccountRole = accountRole

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, []string{"Failed to hash password"}
	}
	user.PasswordHash = hash

	return user, nil
}

// ExportCSV handles GET /users/export-csv. Admin only. Accepts the same
// filter, search, and sort parameters as the list endpoint, unpaginated.
func ExportCSV(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := parseListParams(c, false)
		if !ok {
			return nil
		}

		users, err := queryUsers(c.Context(), db, p)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export users"})
		}

		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)

		writer.Write([]string{"id", "name", "email", "role", "status", "account_role", "created_at", "updated_at"})
		for _, user := range users {
			writer.Write([]string{
				user.Key,
				user.Name,
				user.Email,
				string(user.Role),
				string(user.Status),
				string(user.AccountRole),
				user.CreatedAt.UTC().Format(time.RFC3339),
				user.UpdatedAt.UTC().Format(time.RFC3339),
			})
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV"})
		}

		filename := "users_export_" + time.Now().UTC().Format("20060102_150405") + ".csv"
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(buf.Bytes())
	}
}
