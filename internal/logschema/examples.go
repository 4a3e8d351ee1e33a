package logschema

// Example is a worked question and the SQL that answers it.
type Example struct {
	Question string
	SQL      string
}

// Examples returns the worked question→SQL pairs shown to the translator.
func Examples() []Example {
	return []Example{
		{
			"Which functions failed?",
			"SELECT function_name FROM execution_logs WHERE status = 'FAILED';",
		},
		{
			"can you give me how many users were accepted in the month of april?",
			"SELECT COUNT(DISTINCT access_logs.user_id) AS accepted_users FROM access_logs JOIN vpc_logs USING (request_id) WHERE vpc_logs.action = 'ACCEPT' AND access_logs.timestamp >= '2025-04-01T00:00:00' AND access_logs.timestamp <= '2025-04-30T23:59:59';",
		},
		{
			"Which users triggered rejected VPC actions?",
			"SELECT user_id FROM access_logs JOIN vpc_logs USING (request_id) WHERE action = 'REJECT';",
		},
		{
			"Which services had the highest average execution time for failed requests?",
			"SELECT function_name, AVG(duration_ms) AS avg_duration FROM execution_logs WHERE status = 'FAILED' GROUP BY function_name ORDER BY avg_duration DESC;",
		},
		{
			"Which user IDs accessed the `/api/data` endpoint but the VPC action was REJECT?",
			"SELECT access_logs.user_id FROM access_logs JOIN vpc_logs USING (request_id) WHERE access_logs.endpoint = '/api/data' AND vpc_logs.action = 'REJECT';",
		},
		{
			"For failed `auth_user` function calls, what were the corresponding IPs and status codes?",
			"SELECT vpc_logs.src_ip, vpc_logs.dst_ip, access_logs.status_code FROM execution_logs JOIN vpc_logs USING (request_id) JOIN access_logs USING (request_id) WHERE execution_logs.function_name = 'auth_user' AND execution_logs.status = 'FAILED';",
		},
		{
			"What is the total number of bytes sent for successful requests to the `/api/login` endpoint?",
			"SELECT SUM(vpc_logs.bytes_sent) AS total_bytes FROM access_logs JOIN execution_logs USING (request_id) JOIN vpc_logs USING (request_id) WHERE access_logs.endpoint = '/api/login' AND execution_logs.status = 'SUCCESS';",
		},
		{
			"Which user had the longest execution duration and what function was called?",
			"SELECT access_logs.user_id, execution_logs.function_name, execution_logs.duration_ms FROM execution_logs JOIN access_logs USING (request_id) ORDER BY execution_logs.duration_ms DESC LIMIT 1;",
		},
		{
			"List all requests where the VPC action was REJECT and the function call failed, along with timestamp and endpoint.",
			"SELECT access_logs.timestamp, access_logs.endpoint, vpc_logs.src_ip, execution_logs.function_name FROM access_logs JOIN vpc_logs USING (request_id) JOIN execution_logs USING (request_id) WHERE vpc_logs.action = 'REJECT' AND execution_logs.status = 'FAILED';",
		},
		{
			"Count of failed requests by endpoint where latency was greater than 500ms.",
			"SELECT access_logs.endpoint, COUNT(*) AS failed_count FROM execution_logs JOIN access_logs USING (request_id) WHERE execution_logs.status = 'FAILED' AND execution_logs.duration_ms > 500 GROUP BY access_logs.endpoint;",
		},
	}
}

// LogQuestions is the bank of canonical questions the log schema can answer.
var LogQuestions = []string{
	"What are the anomalies in the month of April?",
	"Show me unusual patterns in the logs.",
	"Are there any spikes in traffic this week?",
	"Which requests failed the most?",
	"Any suspicious behavior detected today?",
	"What are the top endpoints being accessed?",
	"Are there abnormal request patterns?",
	"Show me all failed login attempts.",
	"Which users accessed the system the most?",
	"Any increase in rejected packets?",
	"Which IPs had the most outbound traffic?",
	"How many VPC flow logs show denied traffic?",
	"What source IPs were blocked in the last 24 hours?",
	"Top destinations from VPC logs?",
	"Show me all connections that were accepted.",
	"What ports were most frequently targeted?",
	"Analyze inbound vs outbound traffic volume.",
	"Show rejected connections by region.",
	"Get me VPC logs from last Friday.",
	"Who accessed the private subnet?",
	"How many executions failed yesterday?",
	"What’s the average response duration per endpoint?",
	"Show logs where status code is 500.",
	"Which functions are taking too long to run?",
	"Find all executions that ended in errors.",
	"Which API calls succeeded with 200 status?",
	"List all functions invoked by user ID 12345.",
	"Get the last 10 error logs from execution.",
	"Who triggered the most failed functions?",
	"What’s the request volume trend this month?",
}

// AggregateQuestions are extra positive examples given to the prompted
// classifier ahead of LogQuestions.
var AggregateQuestions = []string{
	"Can you get me the list of users from the month of april?",
	"Show the trend of failed login attempts per day over the last month",
	"Plot the number of requests rejected per day in the last week",
	"Show the number of function calls per user over time",
	"Show the trend of accepted vs rejected requests over the week",
	"Show the number of VPC rejections grouped by protocol.",
	"Show the number of requests per service endpoint over the last 7 days",
	"Show the number of requests grouped by source IP and hour",
	"Show the number of connections accepted vs rejected per day",
	"get the number of requests per method type (GET, POST, etc.) every hour",
	"What is  the number of requests per user over time",
	"Display the number of requests grouped by source IP and hour",
}

// ChartQuestions is the bank of phrasings that ask for a visualization.
var ChartQuestions = []string{
	"Show the trend of failed login attempts per day over the last month",
	"Visualize the number of requests per endpoint every hour",
	"Plot the number of requests rejected per day in the last week",
	"Chart the distribution of request durations per method type",
	"Show the volume of traffic per source IP every 30 minutes",
	"Trend of function execution failures per endpoint",
	"Plot the daily number of requests per user over the last month",
	"Visualize the number of successful requests per region",
	"Chart the distribution of HTTP status codes by hour",
	"Visualize the average duration of requests per user over time",
	"Show the trend of accepted vs rejected requests over the week",
	"Plot the number of requests per service endpoint over the last 7 days",
	"Show the variation in request sizes over the past month",
	"Chart the number of requests grouped by source IP and hour",
	"Plot failed authentication attempts per day over the last 2 weeks",
	"Visualize the number of connections accepted vs rejected per day",
	"Show the time series of VPC action counts per day",
	"Chart the request volume per method type (GET, POST, etc.) every hour",
	"Plot the correlation between request duration and response status",
	"Visualize the frequency of requests from each country in the last 7 days",
	"Trend of latency spikes across different service endpoints",
	"Chart hourly traffic distribution for the past month",
	"Visualize the number of dropped packets per destination port every 10 minutes",
	"Show the trend of rejected requests per source IP",
	"Plot the number of access requests per method type across different days",
	"Visualize the number of failed requests by endpoint per day",
	"Trend of the number of requests per user over time",
	"Show hourly breakdown of traffic volume per IP",
	"Plot spikes in VPC rejects and accepts on a weekly basis",
	"Visualize the average latency per service endpoint per hour",
	"Chart requests to blocked ports per day over the last week",
	"Show the number of function calls per user over time",
	"Plot the total traffic by country across different days",
}
