package app

import (
	"strings"
	"testing"

	"github.com/uzfiles/approvalbot/internal/domain/model"
)

func ddlFor(t *testing.T, table string) string {
	t.Helper()
	prefix := "CREATE TABLE IF NOT EXISTS " + table
	for _, stmt := range schemaStatements {
		if strings.HasPrefix(stmt, prefix) {
			return stmt
		}
	}
	t.Fatalf("в схеме нет таблицы %s", table)
	return ""
}

// Check-ограничение на users.role покрывает весь закрытый набор ролей,
// чтобы база и код не разошлись.
func TestSchemaRoleCheckCoversAllRoles(t *testing.T) {
	ddl := ddlFor(t, "users")
	if !strings.Contains(ddl, "CHECK (role IN (") {
		t.Fatal("у users.role нет check-ограничения")
	}
	for _, role := range model.AllRoles() {
		if !strings.Contains(ddl, "'"+string(role)+"'") {
			t.Errorf("роль %q отсутствует в check-ограничении", role)
		}
	}
}

// Check-ограничения на uploaded_files покрывают статусы и типы файлов.
func TestSchemaFileChecksCoverEnums(t *testing.T) {
	ddl := ddlFor(t, "uploaded_files")
	if !strings.Contains(ddl, "CHECK (status IN (") {
		t.Fatal("у uploaded_files.status нет check-ограничения")
	}
	for _, status := range []model.FileStatus{
		model.StatusPending, model.StatusWaiting, model.StatusAccepted, model.StatusRejected,
	} {
		if !strings.Contains(ddl, "'"+string(status)+"'") {
			t.Errorf("статус %q отсутствует в check-ограничении", status)
		}
	}
	if !strings.Contains(ddl, "CHECK (file_type IN (") {
		t.Fatal("у uploaded_files.file_type нет check-ограничения")
	}
	for _, kind := range []model.FileType{
		model.FileTypeDocument, model.FileTypePhoto, model.FileTypeVideo,
		model.FileTypeAudio, model.FileTypeVoice,
	} {
		if !strings.Contains(ddl, "'"+string(kind)+"'") {
			t.Errorf("тип файла %q отсутствует в check-ограничении", kind)
		}
	}
}
