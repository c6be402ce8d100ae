package lake

// repoCommits selects the rows of one repository tag with committed_date as ts.
const repoCommits = `SELECT sha, author_email, committed_date AS ts, message
	FROM commits WHERE _raw_data_params = ?`

// deltaRows computes per-author gaps ordered by (committed_date, sha).
const deltaRows = `
	lagged AS (
		SELECT sha, ts,
			LAG(ts) OVER (PARTITION BY author_email ORDER BY ts, sha) AS prev_ts
		FROM (` + repoCommits + `) c
	),
	deltas AS (
		SELECT sha, ts, ROUND(CAST((ts - prev_ts) / 60.0 AS {{numeric}}), 2) AS m
		FROM lagged
		WHERE prev_ts IS NOT NULL
	)`

// bucketTail turns a "bucketed(bucket, ts, m)" CTE into one stats row per
// bucket with at least two deltas. The p75 rank is floor(3(n-1)/4) computed
// in integer arithmetic so every backend agrees on it.
const bucketTail = `,
	ranked AS (
		SELECT bucket, ts, m,
			ROW_NUMBER() OVER (PARTITION BY bucket ORDER BY m) AS r,
			COUNT(*) OVER (PARTITION BY bucket) AS n
		FROM bucketed
	),
	stats AS (
		SELECT bucket,
			MIN(ts) AS ts,
			COUNT(*) AS n,
			SUM(m) AS s,
			SUM(m * m) AS s2,
			MAX(CASE WHEN r = ((n - 1) * 3) {{div}} 4 + 1 THEN m END) AS lo_val,
			MAX(CASE WHEN r = ((n - 1) * 3) {{div}} 4 + 2 THEN m END) AS hi_val,
			MAX((n - 1) * 0.75 - ((n - 1) * 3) {{div}} 4) AS frac
		FROM ranked
		GROUP BY bucket
		HAVING COUNT(*) >= 2
	),
	shaped AS (
		SELECT ts, n, s,
			(s2 - s * s / n) / (n - 1) AS variance,
			(1 - frac) * lo_val + frac * COALESCE(hi_val, lo_val) AS p75
		FROM stats
	)
	SELECT {{month}} AS interval_start,
		s AS sum_minutes,
		ROUND(CAST(s / n AS {{numeric}}), 2) AS average,
		CAST(ROUND(CAST(p75 AS {{numeric}}), 0) AS {{int}}) AS p75,
		CAST(ROUND(CAST(SQRT(CASE WHEN variance > 0 THEN variance ELSE 0 END) AS {{numeric}}), 0) AS {{int}}) AS stdev,
		n AS n_deltas
	FROM shaped
	ORDER BY ts`

// queryDeltas lists every delta of a repository tag.
const queryDeltas = `WITH` + deltaRows + `
	SELECT ts AS committed_date, m AS cycle_minutes, sha
	FROM deltas
	ORDER BY ts, sha`

// queryFixedBucket groups deltas into consecutive chunks of a bound size.
// Parameters: repository tag, bucket size.
const queryFixedBucket = `WITH` + deltaRows + `,
	numbered AS (
		SELECT ts, m, ROW_NUMBER() OVER (ORDER BY ts, sha) AS rn
		FROM deltas
	),
	bucketed AS (
		SELECT (rn - 1) {{div}} ? AS bucket, ts, m
		FROM numbered
	)` + bucketTail

// queryByMonth groups deltas by calendar month in the session zone.
const queryByMonth = `WITH` + deltaRows + `,
	bucketed AS (
		SELECT {{month}} AS bucket, ts, m
		FROM deltas
	)` + bucketTail

// queryChangeFailure computes the monthly share of fix commits.
const queryChangeFailure = `
	SELECT bucket AS month,
		ROUND(CAST(100.0 * fixes / total AS {{numeric}}), 1) AS rate,
		fixes AS fix_commits,
		total AS total_commits
	FROM (
		SELECT bucket,
			SUM(CASE WHEN {{fix}} THEN 1 ELSE 0 END) AS fixes,
			COUNT(*) AS total
		FROM (SELECT {{month}} AS bucket, message FROM (` + repoCommits + `) c) labelled
		GROUP BY bucket
	) g
	ORDER BY bucket`

// queryActiveAuthors counts distinct author emails per month.
const queryActiveAuthors = `
	SELECT bucket AS month, COUNT(DISTINCT author_email) AS authors
	FROM (SELECT {{month}} AS bucket, author_email FROM (` + repoCommits + `) c) labelled
	GROUP BY bucket
	ORDER BY bucket`
