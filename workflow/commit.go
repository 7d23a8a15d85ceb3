package workflow

import (
	"context"
	"strings"

	"github.com/zero-day-ai/devflow/tool"
)

// CommitTitleRequest are the arguments of get_commit_title.
type CommitTitleRequest struct {
	TaskType  string `json:"task_type" description:"Kind of task, e.g. feature or bugfix"`
	TaskCode  string `json:"task_code" description:"Task or ticket number"`
	TaskTitle string `json:"task_title" description:"Short title of the task"`
}

// CommitPlanRequest are the arguments of commit_plan.
type CommitPlanRequest struct {
	ProjectName string `json:"project_name" description:"Name of the project"`
	CommitTitle string `json:"commit_title" description:"Title for the commit"`
}

var taskIcons = map[string]string{
	"feature": "✨",
	"bugfix":  "🐛",
}

// FormatCommitTitle renders "{icon}{type}#{code} : {title}". Only feature
// and bugfix tasks get an icon.
func FormatCommitTitle(taskType, taskCode, taskTitle string) string {
	return taskIcons[taskType] + taskType + "#" + taskCode + " : " + taskTitle
}

const commitPlanTemplate = `You are an expert developer assistant. Your task is to help the user commit changes to a local repository by following these steps:

1. **Get the local repository path:**
- Check the gist named ` + "`project_repo_path.json`" + ` for a mapping from the supplied ` + "`project_name`" + ` to its local path.
- If the mapping exists, use the path. If not, ask the user to provide the local path for the project, then update ` + "`project_repo_path.json`" + ` with this new mapping.

2. **Move to the repository directory:**
- Use the command: ` + "`cd \"<repo path>\"`" + ` to change to the repository directory.

3. **Check and summarize changes:**
- Use git commands to check for change(git -P diff) and Summarize the changes as a commit detail message.

4. **Commit the changes:**
- Use the supplied ` + "`commit_title`" + ` as the commit message title, and the summarized details as the commit body.
- Run the appropriate git commands to add, commit, and (optionally) push the changes.

**If the project repo path does not exist in ` + "`project_repo_path.json`" + `, always prompt the user for the path and update the mapping.**

**Example interaction:**
- User: commit-plan project_name="MyApp" commit_title="Fix login bug"
- Model: Looks up ` + "`MyApp`" + ` in ` + "`project_repo_path.json`" + `. If not found, asks: "Please provide the local path for project 'MyApp'."
- Once path is provided, updates the mapping, changes directory, checks changes, summarizes, and commits as described above.

###
User : 
project_name : {project_name}
commit_title : {commit_title}
`

// RenderCommitPlan substitutes the project name and commit title into the
// commit-plan prompt. Values are inserted verbatim and never re-expanded.
func RenderCommitPlan(projectName, commitTitle string) string {
	r := strings.NewReplacer(
		"{project_name}", projectName,
		"{commit_title}", commitTitle,
	)
	return r.Replace(commitPlanTemplate)
}

func commitTitleTool() tool.Tool {
	return tool.Define(GetCommitTitle,
		"Get the commit title for the specified task.",
		func(ctx context.Context, req CommitTitleRequest) (*tool.Result, error) {
			return tool.Text(FormatCommitTitle(req.TaskType, req.TaskCode, req.TaskTitle)), nil
		})
}

func commitPlanTool() tool.Tool {
	return tool.Define(CommitPlan,
		"Commit plan that can follow the steps to commit changes to a local repository",
		func(ctx context.Context, req CommitPlanRequest) (*tool.Result, error) {
			return tool.Text(RenderCommitPlan(req.ProjectName, req.CommitTitle)), nil
		})
}
