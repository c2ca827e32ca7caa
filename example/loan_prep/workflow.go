// Package loan_prep defines an SBA loan preparation workflow in Go instead of a definition file.
package loan_prep

import (
	"github.com/norcalsbdc/advisorflow"
	"github.com/norcalsbdc/advisorflow/builder"
)

const WorkflowID = "loan-prep"

// NewLoanPrepWorkflow builds the loan preparation workflow
func NewLoanPrepWorkflow() (*advisorflow.WorkflowDefinition, error) {
	return builder.NewWorkflow(WorkflowID, "SBA Loan Preparation").
		WithDescription("Gather what a lender will ask for before the client applies.").
		WithIcon("bank").
		WithPersona("You are an SBDC capital access advisor. Be precise about documents and numbers.").
		WithCompletion("The loan package checklist is complete. Schedule a review with your advisor before submitting.").
		Sequence(
			builder.NewStep("purpose", "Loan Purpose", "Establish the amount requested and its use of funds.",
				builder.WithSection("1"),
				builder.WithQuestions(
					"How much are you looking to borrow?",
					"What exactly will the funds pay for?",
				),
			),
			builder.NewStep("history", "Business History", "Summarize time in business, ownership and past credit.",
				builder.WithSection("2"),
				builder.WithWhatIsNeeded("Years in operation, owners with 20% or more, existing debt."),
			),
			builder.NewStep("financials", "Financial Statements", "Confirm the client has current statements and tax returns.",
				builder.WithSection("3"),
				builder.WithInstructions("List missing documents explicitly at the end of the section."),
				builder.WithExamples("Three years of business tax returns, a year-to-date P&L and a current balance sheet."),
			),
			builder.NewStep("collateral", "Collateral", "Identify available collateral and personal guarantees.",
				builder.WithSection("4"),
				builder.Skippable(),
			),
		).
		Build()
}
