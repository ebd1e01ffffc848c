package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS social_credit_scores (
    user_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    score INTEGER NOT NULL DEFAULT 0,
    total_changes INTEGER NOT NULL DEFAULT 0,
    last_updated DATETIME NOT NULL,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (user_id, guild_id)
);
CREATE INDEX IF NOT EXISTS idx_scores_guild_score ON social_credit_scores(guild_id, score DESC);
CREATE INDEX IF NOT EXISTS idx_scores_score ON social_credit_scores(score DESC);

CREATE TABLE IF NOT EXISTS score_history (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT UNIQUE NOT NULL,
    user_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    score_change INTEGER NOT NULL,
    previous_score INTEGER NOT NULL,
    new_score INTEGER NOT NULL,
    reason TEXT NOT NULL,
    message_content TEXT,
    created_at DATETIME NOT NULL,
    CHECK (new_score - previous_score = score_change)
);
CREATE INDEX IF NOT EXISTS idx_history_user_guild ON score_history(user_id, guild_id, seq DESC);

CREATE TABLE IF NOT EXISTS monitored_channels (
    guild_id TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    channel_name TEXT NOT NULL DEFAULT '',
    added_by TEXT NOT NULL,
    added_at DATETIME NOT NULL,
    PRIMARY KEY (guild_id, channel_id)
);
`
