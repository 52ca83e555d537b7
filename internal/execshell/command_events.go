package execshell

// CommandEventObserver receives lifecycle notifications for each gh
// invocation. Console-formatted runs attach an observer that surfaces these
// events to the user.
type CommandEventObserver interface {
	// CommandStarted notifies observers that a gh invocation is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted supplies the execution result, including non-zero exits.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that produced no execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
