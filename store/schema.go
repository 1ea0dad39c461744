package store

// Schema bootstraps the local tables. It runs on every open and must be
// idempotent: both the durable store and the in-memory fallback pass
// through it.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	local_id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	direction TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL,
	units REAL NOT NULL,
	stop_loss REAL,
	take_profit REAL,
	open_time DATETIME NOT NULL,
	close_time DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_owner ON trades(owner_id);
CREATE INDEX IF NOT EXISTS idx_trades_owner_updated ON trades(owner_id, updated_at);

CREATE TABLE IF NOT EXISTS sync_mappings (
	remote_id TEXT PRIMARY KEY,
	local_id INTEGER NOT NULL UNIQUE,
	last_synced_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_state (
	owner_id TEXT PRIMARY KEY,
	last_pulled_at DATETIME NOT NULL
);
`
