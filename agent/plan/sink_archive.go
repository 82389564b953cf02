package plan

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type ArchiveConfig struct {
	DSN string `envconfig:"DSN"`
}

func (c ArchiveConfig) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

type planRow struct {
	bun.BaseModel `bun:"table:travel_plans,alias:tp"`

	ID            int64            `bun:"id,pk,autoincrement"`
	SessionID     string           `bun:"session_id,notnull"`
	Source        string           `bun:"source"`
	Destination   string           `bun:"destination"`
	DepartureDate time.Time        `bun:"departure_date,type:date"`
	ReturnDate    time.Time        `bun:"return_date,type:date"`
	Slots         statex.SlotState `bun:"slots,type:jsonb"`
	Report        string           `bun:"report,notnull"`
	GeneratedAt   time.Time        `bun:"generated_at,notnull"`
}

// ArchiveSink stores every generated plan in Postgres.
type ArchiveSink struct {
	db *bun.DB
}

var _ contractx.PlanSink = (*ArchiveSink)(nil)

// NewArchiveSink opens the database and creates the travel_plans table if needed.
func NewArchiveSink(ctx context.Context, cfg ArchiveConfig) (*ArchiveSink, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("archive dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sink := NewArchiveSinkWithDB(bun.NewDB(sqldb, pgdialect.New()))
	if err := sink.Migrate(ctx); err != nil {
		_ = sink.Close()
		return nil, err
	}
	return sink, nil
}

func NewArchiveSinkWithDB(db *bun.DB) *ArchiveSink {
	return &ArchiveSink{db: db}
}

func (s *ArchiveSink) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*planRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *ArchiveSink) Publish(ctx context.Context, rec contractx.PlanRecord) error {
	row := &planRow{
		SessionID:   rec.SessionID,
		Source:      rec.Slots.Source,
		Destination: rec.Slots.Destination,
		Slots:       rec.Slots,
		Report:      rec.Report,
		GeneratedAt: rec.GeneratedAt,
	}
	if rec.Slots.DepartureDate != nil {
		row.DepartureDate = *rec.Slots.DepartureDate
	}
	if rec.Slots.ReturnDate != nil {
		row.ReturnDate = *rec.Slots.ReturnDate
	}
	_, err := s.db.NewInsert().Model(row).Exec(ctx)
	return err
}

func (s *ArchiveSink) Close() error {
	return s.db.Close()
}
