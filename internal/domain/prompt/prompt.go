// Package prompt renders the model instructions used by the credit pipeline.
// Every builder is pure: inputs are inserted verbatim, without escaping or truncation.
package prompt

import (
	"strconv"
	"strings"
)

const analystPreamble = `You are an expert credit risk analyst with deep experience in assessing loan applications for financial institutions. Analyze the applicant's financial health and creditworthiness based on the following structured data sources:

1. Annual Information Statement (AIS) Summary
2. Bank Statement Summary
3. Multi-Bureau Aggregated API Data (excluding the normalized credit score)

Your task:
- Conduct a comprehensive evaluation of the applicant's credit risk profile.
- Recommend a clear and actionable lending decision (Approve / Decline / Approve with Conditions).
- Suggest appropriate lending terms (Maximum Loan Amount, Interest Rate Range, Tenure, Collateral Requirement).
- Provide risk mitigation strategies, if any risks are identified.

Be objective, data-driven, and concise in your analysis. Avoid any assumptions not supported by the provided data.
`

const bankStatementTemplate = `You are a financial transaction summarizer for a credit and risk analysis application.

The user has provided their bank statement containing transaction data for the last 6 months.

Your task is to:

1. Analyze the transaction data.
2. Generate a monthly summary for each month present, and an overall summary.
3. Return the result in the exact text format shown below.
4. Do NOT add any commentary, explanation, or text outside the output format.

Respond with a clean summary in this exact format:

Monthly Summary

### [Month Year]

* Total Credits: [amount]
* Total Debits: [amount]
* Number of Transactions: [number]
* Largest Credit Transaction: [description with amount]
* Largest Debit Transaction: [description with amount]
* Unusual/Spikes: [description or "None"]

(repeat this exact block for each month, separated by a blank line)

Overall Summary

* Monthly average credit: [amount]
* Monthly average debit: [amount]
* Notable spending trend: [brief observation about any unusual or increasing debit pattern]
* Notable income trend: [brief observation about income pattern, consistency, or bulk transfers]
* Financial stability: [short comment on risk indicators such as low balance or high volatility]

Here is the bank statement data:
`

const aisTemplate = `You are a financial assistant helping with the analysis of a taxpayer's Annual Information Statement (AIS). The AIS includes data such as income received (rent, dividend, interest, etc.), high-value financial transactions (property sales/purchases, mutual fund transactions), and taxes deducted at source (TDS).

Your task is to analyze the AIS and generate a clear, concise summary in plain text only, following the fixed structure below. Do not add headings, markdown, or extra formatting. Be accurate and neutral. Do not assume values not present in the input.

Always return the analysis in this exact structure:

Summary of Annual Information Statement (AIS)

1. Income Sources:
   - [Income Type]: ₹ [Amount] (from [Source])

2. High-Value Transactions:
   - [Transaction Type]: ₹ [Amount] (from [Source])

3. Tax Deducted at Source (TDS):
   - TDS on [Transaction Type]: ₹ [Amount] (from [Source])

4. Credit Assessment:
   - Steady income sources: [List or description]
   - High-value assets: [List or description]
   - Regular interest/dividend income: [List or description]

5. Risk Evaluation:
   - Inconsistent income: [Yes/No or Description]
   - Mismatch in reported vs. actual income: [Yes/No or Description]
   - Unusually large or suspicious transactions: [List or description]

Note: The above analysis is based on the provided AIS and may not be exhaustive.

Here is the AIS data:
`

const verdictSchema = `### Output Instructions:

Provide your output strictly in valid JSON, structured as follows. Each key must contain a detailed and accurate response based on the data provided.

{
    "Applicant Profile Summary": "[Income streams, property transactions, rent/dividends/interest, average balances, high-value assets.]",
    "Creditworthiness Assessment": "[Bureau scores, defaults and missed payments, current loan obligations, settled loans, cash flow, income consistency.]",
    "Identified Risks": "[Defaults, missed payments, high debt-to-income ratio, overexposure to loans, significant liabilities.]",
    "Final Lending Decision": "[Exactly one of: Approve / Decline / Approve with Conditions]",
    "Justification for the Decision": "[Why the decision was made: income stability, existing liabilities, repayment behavior, cash flow strength.]",
    "Recommended Lending Terms": {
        "Maximum Loan Amount": "[Recommended maximum loan amount.]",
        "Interest Rate Range": "[Interest rate range aligned with the risk profile.]",
        "Tenure": "[Suitable tenure in months or years.]",
        "Collateral Requirement": "[Whether collateral is required, and if so its type and suggested value.]"
    },
    "Risk Mitigation Suggestions": "[Collateral, guarantor, EMI auto-debit mandates, shorter tenure, etc.]"
}

### Output Guidelines:
- Provide factual and data-driven insights only.
- Do not include any text outside of the JSON object.
- Fill every field, using "None" where appropriate.
- Return only the JSON object.
`

const separator = "---\n"

// BankStatement renders the bank statement summarization prompt.
func BankStatement(statements string) string {
	return bankStatementTemplate + statements + "\n"
}

// AIS renders the Annual Information Statement summarization prompt.
func AIS(aisText string) string {
	return aisTemplate + aisText + "\n"
}

// CreditScore renders the scoring prompt fusing both summaries with bureau data.
func CreditScore(bankSummary, aisSummary, bureauData string) string {
	var b strings.Builder
	b.WriteString(analystPreamble)
	b.WriteString("\n" + separator + "\n### Data Inputs:\n\n")
	b.WriteString("AIS Summary:\n" + aisSummary + "\n" + separator + "\n")
	b.WriteString("Bank Statement Summary:\n" + bankSummary + "\n" + separator + "\n")
	b.WriteString("Multi-Bureau API Data (excluding normalized credit score):\n\n" + bureauData + "\n" + separator + "\n")
	b.WriteString(verdictSchema)
	return b.String()
}

// Exchange is one prior question and answer replayed into a chat prompt.
type Exchange struct {
	User string
	AI   string
}

// ChatInput carries everything a follow-up question is answered against.
type ChatInput struct {
	BankSummary   string
	AISSummary    string
	CreditVerdict string
	History       []Exchange
	// Omitted counts earlier turns left out of History.
	Omitted int
	Query   string
}

// Chat renders a follow-up prompt over the persisted application context.
func Chat(in ChatInput) string {
	var b strings.Builder
	b.WriteString(analystPreamble)
	b.WriteString("\n" + separator + "\n### Data Inputs:\n\n")
	b.WriteString("**AIS Summary:**\n" + in.AISSummary + "\n" + separator + "\n")
	b.WriteString("**Bank Statement Summary:**\n" + in.BankSummary + "\n" + separator + "\n")
	b.WriteString("**Credit assessment calculated from the information above:**\n" + in.CreditVerdict + "\n" + separator + "\n")

	b.WriteString("### Past conversation\n\n")
	if in.Omitted > 0 {
		b.WriteString("(" + strconv.Itoa(in.Omitted) + " earlier turns omitted)\n\n")
	}
	if len(in.History) == 0 {
		b.WriteString("(no previous questions)\n\n")
	}
	for i, ex := range in.History {
		b.WriteString("Turn " + strconv.Itoa(in.Omitted+i+1) + "\n")
		b.WriteString("User: " + ex.User + "\n")
		b.WriteString("Assistant: " + ex.AI + "\n\n")
	}
	b.WriteString("The user may refer to earlier turns; answer with that history in mind.\n\n")
	b.WriteString("### User Query:\n" + in.Query + "\n")
	return b.String()
}

// Advisor renders the plain-language financial assistant prompt over a stored profile.
func Advisor(profile, message string) string {
	var b strings.Builder
	b.WriteString("You are a helpful financial assistant.\n\n")
	b.WriteString("Context (user's financial information):\n" + profile + "\n\n")
	b.WriteString("User question: " + message + "\n\n")
	b.WriteString("The user may have no financial background. Reply in short, simple sentences, avoid jargon, and make the advice clear and actionable.\n")
	return b.String()
}

const expenseTemplate = `You are an expert financial analyst. You are given text extracted from a bank statement which contains only basic transaction details (date, transaction id, amount, balance). There is no merchant or category information. Analyze the expense patterns as follows:

1. Compute the spending breakdown by transaction amount ranges:
   - Small: Transactions below ₹500
   - Medium: Transactions between ₹500 and ₹2000
   - Large: Transactions between ₹2000 and ₹10000
   - Very Large: Transactions above ₹10000
   Report the percentage of the total expense in each range.

2. Analyze the date patterns. For example, determine the percentage of expense done per week or per day.

3. Identify any unusual transactions (spending spikes) based on the amount or timing.

4. Provide a concise summary of the overall expense pattern and clear, actionable suggestions to manage expenses.

Output your analysis as a JSON object with the following keys and nothing else:
{
   "summary": string,
   "spending_breakdown": {
         "small": number,
         "medium": number,
         "large": number,
         "very_large": number,
         "date_pattern": { "week": {string: number}, "day": {string: number} }
   },
   "unusual_transactions": [string, ...],
   "suggestions": [string, ...]
}
`

// ExpenseAnalysis renders the bank statement expense analysis prompt.
// additional carries text from supporting documents and may be empty.
func ExpenseAnalysis(statement, additional string) string {
	var b strings.Builder
	b.WriteString(expenseTemplate)
	b.WriteString("\n" + separator + "Bank statement text:\n" + statement + "\n" + separator + "\n")
	if strings.TrimSpace(additional) == "" {
		b.WriteString("No additional documents were provided; use only the bank statement text.\n")
		return b.String()
	}
	b.WriteString("Incorporate insights from these additional documents where relevant:\n" + additional + "\n" + separator)
	return b.String()
}

// WelfareEligibility renders the prompt that pulls eligibility criteria out of a welfare scheme page.
func WelfareEligibility(pageText string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that reads welfare scheme details.\n\n")
	b.WriteString("Based on the following document:\n-----------------------\n")
	b.WriteString(pageText + "\n-----------------------\n\n")
	b.WriteString("Extract only the **eligibility criteria** from this welfare scheme. Write concisely.\n")
	return b.String()
}
