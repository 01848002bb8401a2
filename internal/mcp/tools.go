package mcp

import "github.com/mark3labs/mcp-go/mcp"

var generateToolDef = mcp.NewTool("report_generate",
	mcp.WithDescription("Generate a health report from an activity CSV and an optional nutrition CSV. "+
		"Returns the stored report id, the weekly summary and the exported health_report.csv content."),
	mcp.WithString("activity_csv",
		mcp.Required(),
		mcp.Description("Activity table as CSV text. Columns: date, calories_burned, active_minutes, sleep_minutes."),
	),
	mcp.WithString("nutrition_csv",
		mcp.Description("Nutrition table as CSV text. Columns: date, protein_g."),
	),
	mcp.WithNumber("weight_kg",
		mcp.Description("Body weight in kg for the protein target (default from config, 75)."),
	),
	mcp.WithNumber("protein_per_kg",
		mcp.Description("Protein grams per kg of body weight (default from config, 1.2)."),
	),
	mcp.WithString("duplicate_dates",
		mcp.Description("What to do with repeated nutrition dates: \"first\" keeps the first row, \"reject\" fails."),
		mcp.Enum("first", "reject"),
	),
	mcp.WithBoolean("include_csv",
		mcp.Description("Include the exported CSV in the result (default true)."),
	),
	mcp.WithBoolean("include_markdown",
		mcp.Description("Include the Markdown report in the result (default false)."),
	),
)

var fetchToolDef = mcp.NewTool("report_fetch",
	mcp.WithDescription("Fetch a stored report by id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Report id returned by report_generate."),
	),
	mcp.WithBoolean("include_csv",
		mcp.Description("Include the exported CSV (default false)."),
	),
	mcp.WithBoolean("include_markdown",
		mcp.Description("Include the Markdown report (default true)."),
	),
)

var listToolDef = mcp.NewTool("report_list",
	mcp.WithDescription("List reports stored in this session, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum items to return (default 20, max 100)."),
	),
	mcp.WithNumber("offset",
		mcp.Description("Items to skip (default 0)."),
	),
)

var purgeToolDef = mcp.NewTool("report_purge",
	mcp.WithDescription("Delete stored reports, optionally keeping the newest ones."),
	mcp.WithNumber("keep",
		mcp.Description("Number of newest reports to keep (default 0 deletes all)."),
	),
)
