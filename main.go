package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/easynut/easynut-backend/infra"
	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories"
	"github.com/easynut/easynut-backend/usecases"
	"github.com/easynut/easynut-backend/utils"
)

func main() {
	pgConfig := infra.PgConfig{
		Hostname:         utils.GetStringEnv("PG_HOSTNAME", "localhost"),
		Port:             utils.GetStringEnv("PG_PORT", "5432"),
		User:             utils.GetStringEnv("PG_USER", "postgres"),
		Password:         utils.GetStringEnv("PG_PASSWORD", "postgres"),
		Database:         utils.GetStringEnv("PG_DATABASE", "easynut"),
		ConnectionString: utils.GetStringEnv("PG_CONNECTION_STRING", ""),
	}
	logger := utils.NewLogger(utils.GetStringEnv("LOG_FORMAT", "text"))

	shouldRunMigrations := flag.Bool("migrations", false, "Run migrations")
	shouldExportCatalog := flag.Bool("export-catalog", false, "Write the data-model catalog as CSV on stdout")
	exportModelId := flag.Int("export-table", 0, "Write one model's records as CSV on stdout")
	exportSlugs := flag.String("export-query", "", "Comma-separated data slugs to export as a joined CSV on stdout")
	flag.Parse()

	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	if *shouldRunMigrations {
		if err := repositories.RunMigrations(pgConfig, logger); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if !*shouldExportCatalog && *exportModelId == 0 && *exportSlugs == "" {
		return
	}

	pool, err := infra.NewPostgresConnectionPool(pgConfig.GetConnectionString(),
		utils.GetIntEnv("PG_MAX_POOL_CONNECTIONS", infra.MAX_CONNECTIONS))
	if err != nil {
		log.Fatalf("error creating postgres connection pool: %v", err)
	}
	defer pool.Close()

	executorGetter := repositories.NewExecutorGetter(pool)
	recordRepository := repositories.DynamicRecordRepositoryPostgresql{}
	registry := usecases.NewSchemaRegistry(executorGetter, repositories.SchemaRepositoryPostgresql{}, recordRepository)
	exportUsecase := usecases.NewExportUsecase(executorGetter, registry, recordRepository)
	permissionsUsecase := usecases.NewPermissionsUsecase(
		executorGetter, repositories.RoleRepositoryPostgresql{}, registry)

	// CLI exports run with the admin group's rights.
	permissions, err := permissionsUsecase.UserPermissions(ctx, usecases.AdminGroupId)
	if err != nil {
		log.Fatalf("error composing permissions: %v", err)
	}

	if *shouldExportCatalog {
		if err := exportUsecase.ExportCatalog(ctx, os.Stdout); err != nil {
			log.Fatalf("catalog export failed: %v", err)
		}
	}
	if *exportModelId != 0 {
		if err := exportUsecase.ExportModelRecords(ctx, permissions, *exportModelId, os.Stdout); err != nil {
			log.Fatalf("table export failed: %v", err)
		}
	}
	if *exportSlugs != "" {
		modelsFields, err := parseQuerySlugs(*exportSlugs)
		if err != nil {
			log.Fatalf("invalid export query: %v", err)
		}
		if err := exportUsecase.ExportQuery(ctx, permissions, modelsFields, os.Stdout); err != nil {
			log.Fatalf("query export failed: %v", err)
		}
	}
}

func parseQuerySlugs(raw string) (models.QueryFields, error) {
	modelsFields := models.QueryFields{}
	for _, part := range strings.Split(raw, ",") {
		modelId, fieldId, err := models.DataSlug(strings.TrimSpace(part)).Split()
		if err != nil {
			return nil, err
		}
		modelsFields[modelId] = append(modelsFields[modelId], fieldId)
	}
	return modelsFields, nil
}
