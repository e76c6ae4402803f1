/*
Package rundb records training runs and their per-iteration metric
panels in a local SQLite database, so experiments stay comparable
across invocations.
*/
package rundb

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/zorros"

	"mhcii/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	config TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	best_iteration INTEGER,
	score REAL
);
CREATE TABLE IF NOT EXISTS epochs (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	iteration INTEGER NOT NULL,
	phase TEXT NOT NULL,
	loss REAL,
	accuracy REAL,
	auroc REAL,
	precision REAL,
	recall REAL,
	f1 REAL,
	matthews REAL,
	cohen_kappa REAL,
	tp INTEGER, fp INTEGER, tn INTEGER, fn INTEGER
);
`

/*
DB is an open experiment log
*/
type DB struct {
	db *sql.DB
}

/*
Open opens (creating if necessary) the experiment log at path
*/
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, zorros.Wrapf(err, "failed to initialize run database: %v", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

/*
StartRun registers a new training run and returns its id
*/
func (d *DB) StartRun(name, config string) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO runs (name, config, started_at) VALUES (?, ?, ?)`,
		name, config, time.Now().Format(time.RFC3339))
	if err != nil {
		return 0, zorros.Trace(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, zorros.Trace(err)
	}
	return id, nil
}

/*
LogEpoch stores the metric panel of one phase of one iteration. A nil
loss is recorded as NULL for phases that have no loss of their own.
*/
func (d *DB) LogEpoch(runID int64, iteration int, phase string, loss *float64, r metrics.Result) error {
	_, err := d.db.Exec(
		`INSERT INTO epochs
		 (run_id, iteration, phase, loss, accuracy, auroc, precision, recall, f1, matthews, cohen_kappa, tp, fp, tn, fn)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, iteration, phase, loss,
		r.Accuracy, r.AUROC, r.Precision, r.Recall, r.F1, r.Matthews, r.CohenKappa,
		r.Confusion.TP, r.Confusion.FP, r.Confusion.TN, r.Confusion.FN)
	if err != nil {
		return zorros.Trace(err)
	}
	return nil
}

/*
FinishRun closes a run with its best iteration and score
*/
func (d *DB) FinishRun(runID int64, bestIteration int, score float64) error {
	_, err := d.db.Exec(
		`UPDATE runs SET finished_at = ?, best_iteration = ?, score = ? WHERE id = ?`,
		time.Now().Format(time.RFC3339), bestIteration, score, runID)
	if err != nil {
		return zorros.Trace(err)
	}
	return nil
}

/*
Run is a recorded training run
*/
type Run struct {
	ID            int64
	Name          string
	Config        string
	StartedAt     string
	FinishedAt    string
	BestIteration int
	Score         float64
}

/*
Runs lists all recorded runs, most recent first
*/
func (d *DB) Runs() ([]Run, error) {
	rows, err := d.db.Query(
		`SELECT id, name, config, started_at,
		        COALESCE(finished_at, ''), COALESCE(best_iteration, 0), COALESCE(score, 0)
		 FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Name, &r.Config, &r.StartedAt, &r.FinishedAt, &r.BestIteration, &r.Score); err != nil {
			return nil, zorros.Trace(err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, zorros.Trace(err)
	}
	return runs, nil
}
