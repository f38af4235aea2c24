package usecases

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/pure_utils"
	"github.com/easynut/easynut-backend/repositories"
	"github.com/easynut/easynut-backend/utils"
)

// SensitiveValueMask replaces sensitive field values in exports produced
// without the sensitive-data right.
const SensitiveValueMask = "***"

// ExportUsecase writes CSV exports of the dynamic schema and its data: the
// data-model catalog, one model's full table, or an arbitrary cross-model
// selection of fields.
type ExportUsecase struct {
	executorGetter   repositories.ExecutorGetter
	registry         *SchemaRegistry
	recordRepository repositories.DynamicRecordRepository
}

func NewExportUsecase(
	executorGetter repositories.ExecutorGetter,
	registry *SchemaRegistry,
	recordRepository repositories.DynamicRecordRepository,
) ExportUsecase {
	return ExportUsecase{
		executorGetter:   executorGetter,
		registry:         registry,
		recordRepository: recordRepository,
	}
}

// ExportCatalog writes the data-model catalog: one line per (model, field),
// with the data slug callers use to reference the field in cross-model
// queries.
func (uc ExportUsecase) ExportCatalog(ctx context.Context, w io.Writer) error {
	schema, err := uc.registry.Snapshot(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{"Data Slug", "Table Id", "Table Name", "Field Id", "Field Name", "Type", "Values"}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing catalog header")
	}
	for _, config := range schema.AllModelConfigs() {
		for _, field := range config.Fields {
			line := []string{
				string(field.DataSlug()),
				strconv.Itoa(config.Id),
				config.Name,
				strconv.Itoa(field.Id),
				field.Name,
				field.Kind.String(),
				strings.Join(field.ValuesList, ","),
			}
			if err := writer.Write(line); err != nil {
				return errors.Wrap(err, "writing catalog line")
			}
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flushing catalog export")
}

// ExportModelRecords dumps one model's data table: one column per field in
// declared order, then the bookkeeping User and Timestamp columns. Sensitive
// fields are masked unless the caller holds the export right.
func (uc ExportUsecase) ExportModelRecords(
	ctx context.Context, permissions models.UserPermissions, modelId int, w io.Writer,
) error {
	if !permissions.For(modelId).CanView {
		return errors.Wrapf(models.ForbiddenError, "view on model %d", modelId)
	}
	config, err := uc.registry.GetModelConfig(ctx, modelId)
	if err != nil {
		return err
	}
	records, err := uc.recordRepository.ListAllRecords(ctx, uc.executorGetter.GetExecutor(), config)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := make([]string, 0, len(config.Fields)+2)
	for _, field := range config.Fields {
		header = append(header, field.Name)
	}
	header = append(header, "User", "Timestamp")
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing export header")
	}

	for _, record := range records {
		line := make([]string, 0, len(header))
		for _, field := range config.Fields {
			if field.IsSensitive && !permissions.CanExport {
				line = append(line, SensitiveValueMask)
				continue
			}
			value, _ := record.Value(field.Id)
			line = append(line, formatCsvValue(value))
		}
		line = append(line, record.User, record.Timestamp.Format(pure_utils.DateTimeFormat))
		if err := writer.Write(line); err != nil {
			return errors.Wrap(err, "writing export line")
		}
	}
	writer.Flush()

	utils.LoggerFromContext(ctx).InfoContext(ctx, "model export written",
		"model_id", modelId, "records", len(records))
	return errors.Wrap(writer.Error(), "flushing model export")
}

// ExportQuery runs a cross-model field selection through the query planner
// and writes the joined rows, one column per requested data slug.
func (uc ExportUsecase) ExportQuery(
	ctx context.Context, permissions models.UserPermissions,
	modelsFields models.QueryFields, w io.Writer,
) error {
	if !permissions.CanExport {
		return errors.Wrap(models.ForbiddenError, "cross model export")
	}
	for _, modelId := range modelsFields.SortedModelIds() {
		if !permissions.For(modelId).CanView {
			return errors.Wrapf(models.ForbiddenError, "view on model %d", modelId)
		}
	}

	schema, err := uc.registry.Snapshot(ctx)
	if err != nil {
		return err
	}
	sqlQuery, err := schema.BuildSelectSql(modelsFields)
	if err != nil {
		return err
	}
	rows, err := uc.recordRepository.QueryBySlugs(ctx, uc.executorGetter.GetExecutor(), schema, sqlQuery)
	if err != nil {
		return err
	}

	// Column order mirrors the planner's: models ascending, then the caller's
	// field order within each model.
	var slugs []models.DataSlug
	for _, modelId := range modelsFields.SortedModelIds() {
		for _, fieldId := range modelsFields[modelId] {
			slugs = append(slugs, models.NewDataSlug(modelId, fieldId))
		}
	}

	writer := csv.NewWriter(w)
	header := make([]string, len(slugs))
	for i, slug := range slugs {
		header[i] = string(slug)
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing query export header")
	}
	for _, row := range rows {
		line := make([]string, len(slugs))
		for i, slug := range slugs {
			line[i] = formatCsvValue(row[slug])
		}
		if err := writer.Write(line); err != nil {
			return errors.Wrap(err, "writing query export line")
		}
	}
	writer.Flush()

	utils.LoggerFromContext(ctx).InfoContext(ctx, "query export written",
		"columns", len(slugs), "rows", len(rows))
	return errors.Wrap(writer.Error(), "flushing query export")
}

func formatCsvValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case time.Time:
		return v.Format(pure_utils.DateFormat)
	}
	return fmt.Sprintf("%v", value)
}
