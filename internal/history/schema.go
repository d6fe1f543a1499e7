// SPDX-License-Identifier: AGPL-3.0-or-later

package history

const schemaV1 = `
CREATE TABLE IF NOT EXISTS releases (
    release_id   INTEGER PRIMARY KEY AUTOINCREMENT,
    package      TEXT NOT NULL,
    version      TEXT NOT NULL,
    tag          TEXT NOT NULL,
    branch       TEXT,
    status       TEXT NOT NULL,
    failed_step  TEXT,
    warnings     INTEGER DEFAULT 0,
    started_at   TEXT NOT NULL,
    finished_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_releases_package_started
    ON releases(package, started_at DESC);
`
