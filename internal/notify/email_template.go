package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Report.CompanyName}} Labour Compliance Audit</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: #0a1f44;
      color: #ffffff;
    }

    .company {
      font-size: 22px;
      font-weight: 700;
      margin-bottom: 4px;
    }

    .period {
      font-size: 14px;
      opacity: 0.85;
    }

    .badge {
      display: inline-block;
      margin-top: 8px;
      padding: 4px 10px;
      font-size: 11px;
      font-weight: 600;
      border-radius: 4px;
      color: #ffffff;
      text-transform: uppercase;
      letter-spacing: 0.05em;
    }

    .risk-low { background: #16a34a; }
    .risk-medium { background: #f59e0b; }
    .risk-high { background: #dc2626; }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    .meta-label {
      color: #6b7280;
      font-weight: 500;
      padding: 4px 16px 4px 0;
      white-space: nowrap;
    }

    .finding {
      background: #f9fafb;
      border-left: 3px solid #0a1f44;
      padding: 12px 16px;
      font-size: 13px;
      color: #374151;
    }

    ul {
      margin: 0;
      padding-left: 20px;
      font-size: 14px;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="company">{{.Report.CompanyName}}</div>
      <div class="period">Labour Compliance Audit, {{.Report.ReportPeriod}}</div>
      <span class="badge {{riskClass .Report.OverallRiskScore}}">{{.Report.OverallRiskScore}} risk</span>
      {{if .Report.Degraded}}<span class="badge risk-high">Degraded</span>{{end}}
    </div>

    <div class="section">
      <div class="section-title">Headline Figures</div>
      <table>
        <tr><td class="meta-label">Labour Code Provision</td><td>{{.Report.LabourCodeImpact.ProvisionAmount}}</td></tr>
        <tr><td class="meta-label">Revenue</td><td>{{.Report.APIFinancials.Revenue}}</td></tr>
        <tr><td class="meta-label">Employee Cost</td><td>{{.Report.APIFinancials.EmployeeCost}}</td></tr>
        {{if .Coverage}}<tr><td class="meta-label">Documents</td><td>{{range $i, $c := .Coverage}}{{if $i}}, {{end}}{{$c}}{{end}}</td></tr>{{end}}
      </table>
    </div>

    {{if .Report.ExecutiveSummary.KeyFinding}}
    <div class="section">
      <div class="section-title">Key Finding</div>
      <div class="finding">{{.Report.ExecutiveSummary.KeyFinding}}</div>
    </div>
    {{end}}

    {{if .Report.StrategicPlan.Recommendations}}
    <div class="section">
      <div class="section-title">Recommendations</div>
      <ul>
        {{range .Report.StrategicPlan.Recommendations}}
        <li>{{.}}</li>
        {{end}}
      </ul>
    </div>
    {{end}}

    <div class="footer">
      Generated by labourscan{{if .RunID}} (run {{.RunID}}){{end}}
    </div>
  </div>
</body>
</html>`
