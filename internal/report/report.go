// internal/report/report.go
package report

import (
	"bytes"
	"encoding/json"
	"html/template"
)

type reportData struct {
	Title        string
	AnalysisJSON template.JS
}

// RenderHTML renders a standalone HTML dashboard for the analysis. The
// page carries its data inline so the file works without a server.
func RenderHTML(a Analysis) (string, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return "", err
	}

	viewModel := reportData{
		Title:        "vigil: Safety Test Results",
		AnalysisJSON: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, viewModel); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var reportTemplate = template.Must(template.New("results-report").Parse(reportTemplateHTML))

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <style>
    :root {
      --primary: #334155;
      --secondary: #64748B;
      --accent: #3B82F6;
      --light: #F1F5F9;
      --background: #FFFFFF;
      --text: #0F172A;
      --success: #10B981;
      --danger: #DC2626;
      --border: #E2E8F0;
    }
    body { background-color: var(--light); color: var(--text); }
    .navbar-dark { background-color: var(--primary) !important; }
    .card { border: 1px solid var(--border); background-color: var(--background); }
    .stat-value { font-size: 1.8rem; font-weight: 700; }
    .stat-label { color: var(--secondary); font-size: 0.85rem; text-transform: uppercase; }
    .pass-rate-good { color: var(--success); }
    .pass-rate-bad { color: var(--danger); }
    .badge.kind-no-result { background-color: var(--secondary) !important; }
    .badge.kind-classification-mismatch { background-color: var(--danger) !important; }
    .badge.kind-missing-citation { background-color: #F59E0B !important; }
    .chart-canvas { position: relative; height: 320px; }
    .failure-reason { font-size: 0.85rem; color: var(--secondary); }
  </style>
</head>
<body>
  <nav class="navbar navbar-dark">
    <div class="container-fluid">
      <span class="navbar-brand mb-0 h1">{{ .Title }}</span>
      <span class="text-light">Generated: <span id="generatedAt">-</span></span>
    </div>
  </nav>
  <main class="container-fluid my-4">
    <div class="row g-3" id="summaryCards"></div>

    <section class="mt-4">
      <div class="row g-3">
        <div class="col-xl-6">
          <div class="card shadow-sm">
            <div class="card-header bg-white"><h5 class="mb-0">Pass Rate by Category</h5></div>
            <div class="card-body">
              <div class="chart-canvas"><canvas id="categoryChart"></canvas></div>
            </div>
          </div>
        </div>
        <div class="col-xl-6">
          <div class="card shadow-sm">
            <div class="card-header bg-white"><h5 class="mb-0">Category Breakdown</h5></div>
            <div class="card-body">
              <div class="table-responsive">
                <table class="table table-striped table-sm" id="categoryTable">
                  <thead class="table-light">
                    <tr><th>Category</th><th>Policy Area</th><th>Passed</th><th>Failed</th><th>Pass Rate</th></tr>
                  </thead>
                  <tbody></tbody>
                </table>
              </div>
            </div>
          </div>
        </div>
      </div>
    </section>

    <section class="mt-4">
      <div class="card shadow-sm">
        <div class="card-header bg-white"><h5 class="mb-0">Failures</h5></div>
        <div class="card-body">
          <div class="table-responsive">
            <table class="table table-striped table-sm" id="failuresTable">
              <thead class="table-light">
                <tr><th>#</th><th>Test</th><th>Category</th><th>Expected</th><th>Actual</th><th>Kind</th><th>Reason</th></tr>
              </thead>
              <tbody></tbody>
            </table>
          </div>
          <div id="failuresEmpty" class="text-muted"></div>
        </div>
      </div>
    </section>
  </main>

  <script src="https://code.jquery.com/jquery-3.7.1.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.2/dist/chart.umd.min.js"></script>
  <script>
    var analysis = {{ .AnalysisJSON }};
  </script>
  <script>
    (function($) {
      function formatNumber(value, decimals) {
        if (value === null || value === undefined || isNaN(value)) {
          return '-';
        }
        return Number(value).toFixed(decimals);
      }

      function buildCard(label, value, extraClass) {
        var col = $('<div class="col-sm-6 col-lg-2"></div>');
        var card = $('<div class="card shadow-sm h-100"></div>');
        var body = $('<div class="card-body"></div>');
        body.append('<div class="stat-label">' + label + '</div>');
        body.append('<div class="stat-value ' + (extraClass || '') + '">' + value + '</div>');
        card.append(body);
        col.append(card);
        return col;
      }

      function populateSummary(summary, performance) {
        var $container = $('#summaryCards').empty();
        var rateClass = summary.pass_rate_percent >= 80 ? 'pass-rate-good' : 'pass-rate-bad';
        $container.append(buildCard('Total Tests', summary.total_tests));
        $container.append(buildCard('Passed', summary.passed, 'pass-rate-good'));
        $container.append(buildCard('Failed', summary.failed, summary.failed > 0 ? 'pass-rate-bad' : ''));
        $container.append(buildCard('Pass Rate', formatNumber(summary.pass_rate_percent, 1) + '%', rateClass));
        $container.append(buildCard('Avg Latency', formatNumber(performance.avg_latency_ms, 0) + ' ms'));
        $container.append(buildCard('Total Cost', '$' + formatNumber(performance.total_cost_usd, 4)));
      }

      function populateCategoryTable(categories) {
        var $tbody = $('#categoryTable tbody').empty();
        categories.forEach(function(cat) {
          var $row = $('<tr></tr>');
          $row.append($('<td></td>').text(cat.category));
          $row.append($('<td></td>').text(cat.policy_area));
          $row.append($('<td></td>').text(cat.passed));
          $row.append($('<td></td>').text(cat.failed));
          $row.append($('<td></td>').text(formatNumber(cat.pass_rate_percent, 1) + '%'));
          $tbody.append($row);
        });
      }

      function buildCategoryChart(categories) {
        var canvas = document.getElementById('categoryChart');
        if (!canvas || !categories.length) {
          return;
        }
        new Chart(canvas, {
          type: 'bar',
          data: {
            labels: categories.map(function(cat) { return cat.category; }),
            datasets: [
              { label: 'Passed', data: categories.map(function(cat) { return cat.passed; }), backgroundColor: '#10B981' },
              { label: 'Failed', data: categories.map(function(cat) { return cat.failed; }), backgroundColor: '#DC2626' }
            ]
          },
          options: {
            responsive: true,
            maintainAspectRatio: false,
            animation: false,
            scales: {
              x: { stacked: true, ticks: { color: '#64748B' } },
              y: { stacked: true, ticks: { color: '#64748B', precision: 0 } }
            },
            plugins: {
              legend: { position: 'bottom', labels: { color: '#64748B' } }
            }
          }
        });
      }

      function populateFailures(failures) {
        var $tbody = $('#failuresTable tbody').empty();
        if (!failures || !failures.length) {
          $('#failuresTable').hide();
          $('#failuresEmpty').text('No failures in this run.');
          return;
        }
        failures.forEach(function(f) {
          var $row = $('<tr></tr>');
          $row.append($('<td></td>').text(f.test_number || '-'));
          $row.append($('<td></td>').text(f.test_name || f.test_id || '-'));
          $row.append($('<td></td>').text(f.category || '-'));
          $row.append($('<td></td>').text(f.expected || '-'));
          $row.append($('<td></td>').text(f.actual || '-'));
          $row.append($('<td></td>').append($('<span class="badge kind-' + f.kind + '"></span>').text(f.kind)));
          $row.append($('<td class="failure-reason"></td>').text(f.reason));
          $tbody.append($row);
        });
      }

      $(function() {
        if (!analysis) {
          return;
        }
        $('#generatedAt').text(new Date(analysis.generated_at).toLocaleString());
        populateSummary(analysis.summary, analysis.performance);
        populateCategoryTable(analysis.categories || []);
        buildCategoryChart(analysis.categories || []);
        populateFailures(analysis.failures || []);
      });
    })(jQuery);
  </script>
</body>
</html>
`
