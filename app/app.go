// Package app assembles repositories and services from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/qacker/backend/conf"
	"github.com/qacker/backend/s3bucket"
	"github.com/qacker/backend/scoreledger"
	"github.com/qacker/backend/scoresrvc"
	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/submsrvc"
	"github.com/qacker/backend/task"
	"github.com/qacker/backend/tasksrvc"
	"github.com/qacker/backend/user"
	"github.com/qacker/backend/worktime"
)

type App struct {
	Config   conf.Config
	Calendar worktime.Calendar

	Users  user.Repo
	Tasks  task.Repo
	Subms  subm.Repo
	Ledger *scoreledger.Ledger

	TaskSrvc  *tasksrvc.TaskSrvc
	SubmSrvc  *submsrvc.SubmissionSrvc
	ScoreSrvc *scoresrvc.ScoreSrvc

	// Reports is nil when no report bucket is configured.
	Reports *s3bucket.S3Bucket

	// set only for the dynamodb backend
	DynamoDb *dynamodb.Client

	awsCfg    *aws.Config
	rebuildBy scoresrvc.RebuildRule
}

func Build(ctx context.Context, cfg conf.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	rule, err := scoresrvc.ParseRebuildRule(cfg.RebuildRule)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Calendar:  worktime.NewCalendar(loc),
		rebuildBy: rule,
	}

	var sinks []scoreledger.AuditSink
	switch cfg.Store.Backend {
	case conf.StoreMemory:
		a.Users = user.NewInMemRepo()
		a.Tasks = task.NewInMemRepo()
		a.Subms = subm.NewInMemRepo()
		sinks = append(sinks, scoreledger.NewInMemAudit())
	case conf.StoreDynamoDb:
		awsCfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		a.DynamoDb = conf.NewDynamoDbClient(awsCfg, cfg.Store.Endpoint)
		a.Users = user.NewDynamoDbUserRepo(a.DynamoDb, cfg.Store.UsersTable)
		a.Tasks = task.NewDynamoDbTaskRepo(a.DynamoDb, cfg.Store.TasksTable)
		a.Subms = subm.NewDynamoDbSubmRepo(a.DynamoDb, cfg.Store.SubmsTable)
		sinks = append(sinks, scoreledger.NewDynamoDbAudit(a.DynamoDb, cfg.Store.AuditTable))
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.AuditQueueUrl != "" {
		awsCfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, scoreledger.NewSqsAudit(sqs.NewFromConfig(awsCfg), cfg.AuditQueueUrl))
	}
	if cfg.ReportBucket != "" {
		awsCfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		a.Reports = s3bucket.NewS3Bucket(awsCfg, cfg.ReportBucket)
	}

	a.Ledger = scoreledger.NewLedger(a.Users, sinks...)
	a.TaskSrvc = tasksrvc.NewTaskSrvc(a.Tasks, a.Users)
	a.SubmSrvc = submsrvc.NewSubmissionSrvc(a.Tasks, a.Subms, a.Ledger, a.Calendar)
	a.ScoreSrvc = scoresrvc.NewScoreSrvc(a.Users, a.Tasks, a.Subms, a.Ledger, a.Calendar)

	slog.Info("application assembled",
		slog.String("store", cfg.Store.Backend),
		slog.String("timezone", loc.String()),
		slog.String("rebuild_rule", string(rule)),
		slog.Int("audit_sinks", len(sinks)),
		slog.Bool("reports", a.Reports != nil))

	return a, nil
}

// RebuildRule is the configured default for score reconciliation.
func (a *App) RebuildRule() scoresrvc.RebuildRule {
	return a.rebuildBy
}

func (a *App) JwtKey(ctx context.Context) ([]byte, error) {
	if a.Config.JwtKey != "" {
		return []byte(a.Config.JwtKey), nil
	}
	awsCfg, err := a.aws(ctx)
	if err != nil {
		return nil, err
	}
	return a.Config.ResolveJwtKey(ctx, awsCfg)
}

// CreateTables creates all DynamoDB tables. Meant for DynamoDB Local.
func (a *App) CreateTables(ctx context.Context) error {
	if a.DynamoDb == nil {
		return fmt.Errorf("store backend %q has no tables", a.Config.Store.Backend)
	}
	creates := []struct {
		name   string
		create func(context.Context, *dynamodb.Client, string) error
	}{
		{a.Config.Store.UsersTable, user.CreateDynamoDbTable},
		{a.Config.Store.TasksTable, task.CreateDynamoDbTable},
		{a.Config.Store.SubmsTable, subm.CreateDynamoDbTable},
		{a.Config.Store.AuditTable, scoreledger.CreateDynamoDbTable},
	}
	for _, c := range creates {
		if err := c.create(ctx, a.DynamoDb, c.name); err != nil {
			return fmt.Errorf("failed to create table %s: %w", c.name, err)
		}
	}
	return nil
}

func (a *App) aws(ctx context.Context) (aws.Config, error) {
	if a.awsCfg != nil {
		return *a.awsCfg, nil
	}
	cfg, err := conf.LoadAWS(ctx, a.Config)
	if err != nil {
		return aws.Config{}, err
	}
	a.awsCfg = &cfg
	return cfg, nil
}
