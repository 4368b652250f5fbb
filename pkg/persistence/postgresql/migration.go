package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create snapshots table
			CREATE TABLE snapshots (
				execution_id VARCHAR(255) PRIMARY KEY,
				workflow JSONB NOT NULL,
				context JSONB NOT NULL,
				frontier JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_snapshots_created_at ON snapshots(created_at);
		`,
	}
}
